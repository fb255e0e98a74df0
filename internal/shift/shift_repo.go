package shift

import (
	"context"

	"go-workforce/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *Shift) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Shift, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Shift, error) {
	var shifts []Shift
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_time ASC, name ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) Update(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}
