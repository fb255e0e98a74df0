package rbac

import (
	"context"
	"go-workforce/internal/domain"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(ctx context.Context, companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(companyID, role string) ([]domain.PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	if _, err := enforcer.AddGroupingPolicies(roleHierarchy); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, err
	}

	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
		loaded:   map[string]bool{},
	}, nil
}

func (s *service) LoadCompanyPolicy(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(ctx, companyID)
}

func (s *service) loadCompanyPolicyUnlocked(ctx context.Context, companyID string) error {
	rows, err := s.repo.GetRolePermissions(ctx, companyID)
	if err != nil {
		return err
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(1, companyID); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := s.enforcer.AddPolicy(row.Role, companyID, row.Resource, row.Action); err != nil {
			return err
		}
	}

	s.loaded[companyID] = true
	s.logger.Debug("rbac company policy loaded",
		zap.String("company_id", companyID),
		zap.Int("grants", len(rows)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded[req.CompanyID] {
		if err := s.loadCompanyPolicyUnlocked(context.Background(), req.CompanyID); err != nil {
			return false, err
		}
	}

	allowed, err := s.enforcer.Enforce(req.Role, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("company_id", req.CompanyID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permissions(companyID, role string) ([]domain.PermissionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perms, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		if len(p) < 4 || (p[1] != "*" && p[1] != companyID) {
			continue
		}
		resp = append(resp, domain.PermissionResponse{Resource: p[2], Action: p[3]})
	}
	return resp, nil
}
