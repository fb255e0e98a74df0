package domain

// Roles known to the platform. Identity resolution is external; these are the
// values carried in the role claim.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleTeamLead = "team_lead"
	RoleEmployee = "employee"
)

type EnforceRequest struct {
	Role      string `json:"role" binding:"required"`
	CompanyID string `json:"company_id" binding:"required"`
	Resource  string `json:"resource" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionResponse struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleTeamLead, RoleEmployee:
		return true
	}
	return false
}
