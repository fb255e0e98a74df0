package assignment

import (
	"context"
	"database/sql"
	"time"

	"go-workforce/internal/shared/connection"
	"go-workforce/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const viewColumns = `sa.*, e.full_name AS employee_name,
	s.name AS shift_name, s.start_time AS shift_start, s.end_time AS shift_end, s.color AS shift_color`

// Repository is shared by the swap and time entry workflows, which bind it to
// their own transaction through WithTx.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *ShiftAssignment) error
	Update(ctx context.Context, a *ShiftAssignment) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftAssignment, error)
	LockByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftAssignment, error)
	FindActiveByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ShiftAssignment, error)
	LockActiveByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ShiftAssignment, error)
	FindView(ctx context.Context, companyID, id string) (*AssignmentView, error)
	FindViewsInRange(ctx context.Context, companyID string, from, to time.Time, employeeID string) ([]AssignmentView, error)
	FindEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeRef, error)
	FindScheduleEmployees(ctx context.Context, companyID, employeeID string) ([]EmployeeRef, error)
	FindShift(ctx context.Context, companyID, shiftID string) (*ShiftRef, error)
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

func (r *repository) Create(ctx context.Context, a *ShiftAssignment) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *ShiftAssignment) error {
	return r.conn(ctx).Save(a).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftAssignment, error) {
	var a ShiftAssignment
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) LockByIDAndCompany(ctx context.Context, companyID, id string) (*ShiftAssignment, error) {
	var a ShiftAssignment
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) activeByEmployeeAndDate(db *gorm.DB, companyID, employeeID string, date time.Time) (*ShiftAssignment, error) {
	var a ShiftAssignment
	err := db.
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("work_date = ?", date.Format(DateLayout)).
		Where("status <> ?", StatusCancelled).
		Take(&a).Error
	return &a, err
}

func (r *repository) FindActiveByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ShiftAssignment, error) {
	return r.activeByEmployeeAndDate(r.conn(ctx), companyID, employeeID, date)
}

func (r *repository) LockActiveByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*ShiftAssignment, error) {
	return r.activeByEmployeeAndDate(
		r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		companyID, employeeID, date,
	)
}

func (r *repository) viewQuery(ctx context.Context, companyID string) *gorm.DB {
	return r.conn(ctx).
		Table("shift_assignments AS sa").
		Select(viewColumns).
		Joins("JOIN employees e ON e.id = sa.employee_id").
		Joins("LEFT JOIN shifts s ON s.id = sa.shift_id").
		Scopes(tenant.ScopeTable("sa", companyID))
}

func (r *repository) FindView(ctx context.Context, companyID, id string) (*AssignmentView, error) {
	var v AssignmentView
	err := r.viewQuery(ctx, companyID).
		Where("sa.id = ?", id).
		Take(&v).Error
	return &v, err
}

func (r *repository) FindViewsInRange(ctx context.Context, companyID string, from, to time.Time, employeeID string) ([]AssignmentView, error) {
	q := r.viewQuery(ctx, companyID).
		Where("sa.status <> ?", StatusCancelled).
		Where("sa.work_date BETWEEN ? AND ?", from.Format(DateLayout), to.Format(DateLayout))
	if employeeID != "" {
		q = q.Where("sa.employee_id = ?", employeeID)
	}

	var views []AssignmentView
	err := q.Order("sa.work_date ASC").Scan(&views).Error
	return views, err
}

func (r *repository) FindEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeRef, error) {
	var e EmployeeRef
	err := r.conn(ctx).
		Table("employees").
		Select("id, full_name, is_active").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", employeeID).
		Take(&e).Error
	return &e, err
}

func (r *repository) FindScheduleEmployees(ctx context.Context, companyID, employeeID string) ([]EmployeeRef, error) {
	q := r.conn(ctx).
		Table("employees").
		Select("id, full_name, is_active").
		Scopes(tenant.Scope(companyID)).
		Where("is_active = ?", true)
	if employeeID != "" {
		q = q.Where("id = ?", employeeID)
	}

	var refs []EmployeeRef
	err := q.Order("full_name ASC").Scan(&refs).Error
	return refs, err
}

func (r *repository) FindShift(ctx context.Context, companyID, shiftID string) (*ShiftRef, error) {
	var s ShiftRef
	err := r.conn(ctx).
		Table("shifts").
		Select("id, name, start_time, end_time, color, is_active").
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", shiftID).
		Take(&s).Error
	return &s, err
}
