package payroll

import (
	"context"
	"database/sql"
	"time"

	"go-workforce/internal/shared/connection"
	"go-workforce/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// computedColumns are overwritten on recalculation. payment_status,
// approved_by and paid_at are deliberately absent.
var computedColumns = []string{
	"total_hours", "regular_hours", "overtime_hours",
	"hourly_rate", "hourly_pay", "overtime_pay",
	"bonus_amount", "deductions", "gross_pay", "net_pay",
	"late_count", "no_show_count", "average_rating",
	"updated_at",
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreatePeriod(ctx context.Context, p *Period) error
	FindPeriods(ctx context.Context, companyID string) ([]Period, error)
	FindPeriod(ctx context.Context, companyID, id string) (*Period, error)
	MarkPeriodCalculated(ctx context.Context, companyID, id string, at time.Time) error
	FindActiveEmployees(ctx context.Context, companyID string) ([]EmployeeRate, error)
	// FindEntries returns completed, not rejected entries with clock_in in [from, to).
	FindEntries(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]EntrySummary, error)
	UpsertRecord(ctx context.Context, r *Record) error
	FindRecords(ctx context.Context, companyID, periodID string) ([]Record, error)
	LockRecord(ctx context.Context, companyID, id string) (*Record, error)
	UpdateRecord(ctx context.Context, r *Record) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return connection.BindTx(r.db, r.tx).WithContext(ctx)
}

func (r *repository) CreatePeriod(ctx context.Context, p *Period) error {
	return r.conn(ctx).Create(p).Error
}

func (r *repository) FindPeriods(ctx context.Context, companyID string) ([]Period, error) {
	var periods []Period
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) FindPeriod(ctx context.Context, companyID, id string) (*Period, error) {
	var p Period
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) MarkPeriodCalculated(ctx context.Context, companyID, id string, at time.Time) error {
	return r.conn(ctx).
		Model(&Period{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Updates(map[string]any{"status": PeriodCalculated, "calculated_at": at}).Error
}

func (r *repository) FindActiveEmployees(ctx context.Context, companyID string) ([]EmployeeRate, error) {
	var rows []EmployeeRate
	err := r.conn(ctx).
		Table("employees").
		Select("id, full_name, hourly_rate").
		Scopes(tenant.Scope(companyID)).
		Where("is_active = ?", true).
		Order("id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindEntries(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]EntrySummary, error) {
	var rows []EntrySummary
	err := r.conn(ctx).
		Table("time_entries").
		Select("total_hours, is_late, is_no_show, rating").
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status = ?", "completed").
		Where("approval_status <> ?", "rejected").
		Where("clock_in >= ? AND clock_in < ?", from, to).
		Order("clock_in").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) UpsertRecord(ctx context.Context, rec *Record) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"},
				{Name: "employee_id"},
				{Name: "period_id"},
			},
			DoUpdates: clause.AssignmentColumns(computedColumns),
		}).
		Create(rec).Error
}

func (r *repository) FindRecords(ctx context.Context, companyID, periodID string) ([]Record, error) {
	var rows []Record
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Order("employee_id").
		Find(&rows).Error
	return rows, err
}

func (r *repository) LockRecord(ctx context.Context, companyID, id string) (*Record, error) {
	var rec Record
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) UpdateRecord(ctx context.Context, rec *Record) error {
	return r.conn(ctx).Save(rec).Error
}
