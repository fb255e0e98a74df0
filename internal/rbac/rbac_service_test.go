package rbac_test

import (
	"context"
	"errors"
	"testing"

	"go-workforce/internal/domain"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	rows  map[string][]rbac.RolePermissionRow
	err   error
	calls int
}

func (f *fakeRepo) GetRolePermissions(_ context.Context, companyID string) ([]rbac.RolePermissionRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[companyID], nil
}

func newService(t *testing.T, repo rbac.Repository) rbac.Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)
	svc, err := rbac.NewService(repo, enforcer)
	assert.NoError(t, err)
	return svc
}

func TestService_Enforce_RoleHierarchy(t *testing.T) {
	svc := newService(t, &fakeRepo{})
	companyID := "company-a"

	cases := []struct {
		role, resource, action string
		want                   bool
	}{
		{domain.RoleEmployee, "swap", "create", true},
		{domain.RoleEmployee, "swap", "approve", false},
		{domain.RoleTeamLead, "swap", "approve", true},
		{domain.RoleTeamLead, "leave", "approve", false},
		{domain.RoleManager, "leave", "approve", true},
		{domain.RoleManager, "swap", "approve", true},
		{domain.RoleManager, "payroll", "calculate", false},
		{domain.RoleAdmin, "payroll", "calculate", true},
		{domain.RoleAdmin, "attendance", "track", true},
		{"contractor", "schedule", "read", false},
	}

	for _, tc := range cases {
		t.Run(tc.role+":"+tc.resource+":"+tc.action, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{
				Role:      tc.role,
				CompanyID: companyID,
				Resource:  tc.resource,
				Action:    tc.action,
			})
			assert.NoError(t, err)
			assert.Equal(t, tc.want, allowed)
		})
	}
}

func TestService_Enforce_CompanyGrantIsTenantScoped(t *testing.T) {
	repo := &fakeRepo{rows: map[string][]rbac.RolePermissionRow{
		"company-a": {{CompanyID: "company-a", Role: domain.RoleManager, Resource: "payroll", Action: "calculate"}},
	}}
	svc := newService(t, repo)

	allowedA, err := svc.Enforce(domain.EnforceRequest{Role: domain.RoleManager, CompanyID: "company-a", Resource: "payroll", Action: "calculate"})
	assert.NoError(t, err)
	assert.True(t, allowedA)

	allowedB, err := svc.Enforce(domain.EnforceRequest{Role: domain.RoleManager, CompanyID: "company-b", Resource: "payroll", Action: "calculate"})
	assert.NoError(t, err)
	assert.False(t, allowedB)

	_, _ = svc.Enforce(domain.EnforceRequest{Role: domain.RoleManager, CompanyID: "company-a", Resource: "leave", Action: "approve"})
	assert.Equal(t, 2, repo.calls, "company policy is loaded once per tenant")
}

func TestService_Enforce_RepoError(t *testing.T) {
	svc := newService(t, &fakeRepo{err: errors.New("db down")})

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: domain.RoleAdmin, CompanyID: "c", Resource: "payroll", Action: "read"})

	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestService_Permissions_IncludesInherited(t *testing.T) {
	svc := newService(t, &fakeRepo{})

	perms, err := svc.Permissions("company-a", domain.RoleTeamLead)

	assert.NoError(t, err)
	assert.Contains(t, perms, domain.PermissionResponse{Resource: "swap", Action: "approve"})
	assert.Contains(t, perms, domain.PermissionResponse{Resource: "attendance", Action: "track"})
	assert.NotContains(t, perms, domain.PermissionResponse{Resource: "leave", Action: "approve"})
}
