package rbac

import "go-workforce/internal/domain"

type PermissionsResponse struct {
	Role        string                      `json:"role"`
	Permissions []domain.PermissionResponse `json:"permissions"`
}
