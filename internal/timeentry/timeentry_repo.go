package timeentry

import (
	"context"
	"database/sql"

	"go-workforce/internal/shared/connection"
	"go-workforce/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=timeentry_repo.go -destination=mock/timeentry_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *TimeEntry) error
	Update(ctx context.Context, e *TimeEntry) error
	// LockActiveByEmployee returns gorm.ErrRecordNotFound when the employee is not clocked in.
	LockActiveByEmployee(ctx context.Context, companyID, employeeID string) (*TimeEntry, error)
	LockByIDAndCompany(ctx context.Context, companyID, id string) (*TimeEntry, error)
	ExistsForAssignment(ctx context.Context, companyID, assignmentID string) (bool, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]TimeEntry, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]TimeEntry, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.BindTx(r.db, r.tx).WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, e *TimeEntry) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) Update(ctx context.Context, e *TimeEntry) error {
	return r.conn(ctx).Save(e).Error
}

func (r *repository) LockActiveByEmployee(ctx context.Context, companyID, employeeID string) (*TimeEntry, error) {
	var e TimeEntry
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusInProgress, StatusBreak}).
		First(&e).Error
	return &e, err
}

func (r *repository) LockByIDAndCompany(ctx context.Context, companyID, id string) (*TimeEntry, error) {
	var e TimeEntry
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) ExistsForAssignment(ctx context.Context, companyID, assignmentID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&TimeEntry{}).
		Scopes(tenant.Scope(companyID)).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("clock_in DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]TimeEntry, error) {
	var rows []TimeEntry
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("clock_in DESC").
		Find(&rows).Error
	return rows, err
}
