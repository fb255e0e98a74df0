package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PeriodOpen       = "open"
	PeriodCalculated = "calculated"
)

const (
	PaymentCalculated = "calculated"
	PaymentApproved   = "approved"
	PaymentPaid       = "paid"
)

type Period struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_period_range,priority:1"`
	Name         string    `gorm:"type:varchar(120);not null"`
	StartDate    time.Time `gorm:"type:date;not null;uniqueIndex:uq_payroll_period_range,priority:2"`
	EndDate      time.Time `gorm:"type:date;not null;uniqueIndex:uq_payroll_period_range,priority:3"`
	Status       string    `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null"`
	CalculatedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Period) TableName() string {
	return "payroll_periods"
}

// Record is one employee's pay for one period. The calculator overwrites
// every computed column; payment_status only moves through AdvancePayment.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_record,priority:1"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_record,priority:2"`
	PeriodID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_record,priority:3;index"`

	TotalHours    decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	RegularHours  decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	OvertimeHours decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	HourlyRate    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	HourlyPay     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	OvertimePay   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	BonusAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Deductions    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	GrossPay      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	NetPay        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	LateCount     int             `gorm:"not null;default:0"`
	NoShowCount   int             `gorm:"not null;default:0"`
	AverageRating decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0"`

	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'calculated'"`
	ApprovedBy    *uuid.UUID `gorm:"type:uuid"`
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Record) TableName() string {
	return "payroll_records"
}

// EmployeeRate is an active employee with their pay rate; a NULL rate pays zero.
type EmployeeRate struct {
	ID         uuid.UUID
	FullName   string
	HourlyRate decimal.NullDecimal
}

// EntrySummary is the part of a time entry payroll reads.
type EntrySummary struct {
	TotalHours decimal.Decimal
	IsLate     bool
	IsNoShow   bool
	Rating     *int
}
