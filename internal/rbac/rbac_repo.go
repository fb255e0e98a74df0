package rbac

import (
	"context"

	"gorm.io/gorm"
)

// RolePermissionRow is a tenant-specific grant on top of the default policy.
type RolePermissionRow struct {
	CompanyID string `gorm:"column:company_id;type:uuid;primaryKey"`
	Role      string `gorm:"column:role;type:varchar(30);primaryKey"`
	Resource  string `gorm:"column:resource;type:varchar(50);primaryKey"`
	Action    string `gorm:"column:action;type:varchar(30);primaryKey"`
}

func (RolePermissionRow) TableName() string {
	return "role_permissions"
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRolePermissions(ctx context.Context, companyID string) ([]RolePermissionRow, error) {
	var rows []RolePermissionRow
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("role, resource, action").
		Find(&rows).Error
	return rows, err
}
