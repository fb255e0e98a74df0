package timeentry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusInProgress = "in_progress"
	StatusBreak      = "break"
	StatusCompleted  = "completed"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	VerificationVerified   = "verified"
	VerificationUnverified = "unverified"
	VerificationSkipped    = "skipped"
)

// TimeEntry is the actual worked time of one employee. At most one entry per
// employee is in_progress or on break.
type TimeEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_time_entries_company_clock_in"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_time_entry_active,where:status <> 'completed'"`
	AssignmentID *uuid.UUID `gorm:"type:uuid;index"`

	ClockIn       time.Time `gorm:"type:timestamptz;not null;index:idx_time_entries_company_clock_in"`
	ClockOut      *time.Time
	BreakStart    *time.Time
	BreakEnd      *time.Time
	BreakSeconds  int             `gorm:"not null;default:0"`
	BreakMinutes  int             `gorm:"not null;default:0"`
	BreakExceeded bool            `gorm:"not null;default:false"`
	TotalHours    decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	Status             string `gorm:"type:varchar(20);not null;default:'in_progress'"`
	ApprovalStatus     string `gorm:"type:varchar(20);not null;default:''"`
	VerificationStatus string `gorm:"type:varchar(20);not null;default:'skipped'"`
	IsLate             bool   `gorm:"not null;default:false"`
	IsNoShow           bool   `gorm:"not null;default:false"`

	CallsHandled *int
	Rating       *int
	Remarks      string `gorm:"type:text"`

	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt  *time.Time
	ReviewNotes string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

func (e TimeEntry) IsActive() bool {
	return e.Status == StatusInProgress || e.Status == StatusBreak
}

// BreakDuration is the total closed break time. BreakMinutes is its rounded
// display value and is never used for arithmetic.
func (e TimeEntry) BreakDuration() time.Duration {
	return time.Duration(e.BreakSeconds) * time.Second
}
