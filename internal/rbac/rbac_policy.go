package rbac

import "go-workforce/internal/domain"

var roleHierarchy = [][]string{
	{domain.RoleAdmin, domain.RoleManager},
	{domain.RoleManager, domain.RoleTeamLead},
	{domain.RoleTeamLead, domain.RoleEmployee},
}

// defaultPolicies apply to every tenant. Inherited grants are not repeated.
var defaultPolicies = [][]string{
	{domain.RoleEmployee, "*", "schedule", "read"},
	{domain.RoleEmployee, "*", "shift", "read"},
	{domain.RoleEmployee, "*", "swap", "read"},
	{domain.RoleEmployee, "*", "swap", "create"},
	{domain.RoleEmployee, "*", "leave", "read"},
	{domain.RoleEmployee, "*", "leave", "create"},
	{domain.RoleEmployee, "*", "attendance", "track"},
	{domain.RoleEmployee, "*", "attendance", "read"},

	{domain.RoleTeamLead, "*", "schedule", "write"},
	{domain.RoleTeamLead, "*", "swap", "approve"},
	{domain.RoleTeamLead, "*", "attendance", "approve"},
	{domain.RoleTeamLead, "*", "employee", "read"},

	{domain.RoleManager, "*", "leave", "approve"},
	{domain.RoleManager, "*", "shift", "write"},
	{domain.RoleManager, "*", "payroll", "read"},
	{domain.RoleManager, "*", "employee", "write"},

	{domain.RoleAdmin, "*", "payroll", "*"},
}
