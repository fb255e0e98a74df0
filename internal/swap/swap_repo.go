package swap

import (
	"context"
	"database/sql"
	"time"

	"go-workforce/internal/shared/connection"
	"go-workforce/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *ShiftSwapRequest) error
	FindAllByCompany(ctx context.Context, companyID string) ([]ShiftSwapRequest, error)
	// FindAllByParticipant returns requests where employeeID is requester or target.
	FindAllByParticipant(ctx context.Context, companyID, employeeID string) ([]ShiftSwapRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwapRequest, error)
	LockByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwapRequest, error)
	ExistsPending(ctx context.Context, companyID string, req *ShiftSwapRequest) (bool, error)
	// ResolvePending writes the outcome only while the row is still pending
	// and returns the number of rows changed.
	ResolvePending(ctx context.Context, companyID, id, status, approverID, notes string, at time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, req *ShiftSwapRequest) error {
	return r.conn(ctx).Create(req).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]ShiftSwapRequest, error) {
	var reqs []ShiftSwapRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllByParticipant(ctx context.Context, companyID, employeeID string) ([]ShiftSwapRequest, error) {
	var reqs []ShiftSwapRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("requester_id = ? OR target_id = ?", employeeID, employeeID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwapRequest, error) {
	var req ShiftSwapRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) LockByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftSwapRequest, error) {
	var req ShiftSwapRequest
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) ExistsPending(ctx context.Context, companyID string, req *ShiftSwapRequest) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&ShiftSwapRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("requester_id = ? AND target_id = ?", req.RequesterID, req.TargetID).
		Where("original_assignment_id = ? AND requested_assignment_id = ?", req.OriginalAssignmentID, req.RequestedAssignmentID).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ResolvePending(ctx context.Context, companyID, id, status, approverID, notes string, at time.Time) (int64, error) {
	res := r.conn(ctx).
		Model(&ShiftSwapRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":      status,
			"approved_by": approverID,
			"resolved_at": at,
			"notes":       notes,
			"updated_at":  at,
		})
	return res.RowsAffected, res.Error
}
