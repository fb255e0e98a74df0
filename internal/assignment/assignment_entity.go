package assignment

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

const (
	StatusAssigned      = "assigned"
	StatusConfirmed     = "confirmed"
	StatusInProgress    = "in_progress"
	StatusSwapRequested = "swap_requested"
	StatusCompleted     = "completed"
	StatusCancelled     = "cancelled"
)

var transitions = map[string][]string{
	StatusAssigned:      {StatusConfirmed, StatusInProgress, StatusSwapRequested, StatusCancelled},
	StatusConfirmed:     {StatusInProgress, StatusSwapRequested, StatusCancelled},
	StatusSwapRequested: {StatusAssigned, StatusConfirmed, StatusCancelled},
	StatusInProgress:    {StatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsKnownStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusConfirmed, StatusInProgress, StatusSwapRequested, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ShiftAssignment pairs one employee with a shift template or an ad hoc
// override on one date. At most one non-cancelled row exists per employee
// and date.
type ShiftAssignment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_assignment_employee_date_active,where:status <> 'cancelled'"`
	WorkDate    time.Time  `gorm:"type:date;not null;uniqueIndex:uq_assignment_employee_date_active,where:status <> 'cancelled'"`
	ShiftID     *uuid.UUID `gorm:"type:uuid"`
	CustomName  *string
	CustomStart *string    `gorm:"type:varchar(5)"`
	CustomEnd   *string    `gorm:"type:varchar(5)"`
	CustomColor *string    `gorm:"type:varchar(16)"`
	Status      string     `gorm:"not null;default:assigned;index"`
	AssignedBy  *uuid.UUID `gorm:"type:uuid"`
	StartedAt   *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasOverride reports whether the ad hoc fields fully describe a shift.
func (a ShiftAssignment) HasOverride() bool {
	return a.CustomName != nil && a.CustomStart != nil && a.CustomEnd != nil
}

// AssignmentView is an assignment joined with its employee and template.
type AssignmentView struct {
	ShiftAssignment `gorm:"embedded"`
	EmployeeName    string
	ShiftName       *string
	ShiftStart      *string
	ShiftEnd        *string
	ShiftColor      *string
}

// DisplayShift is the shift an assignment resolves to, with override fields
// taking precedence over the template one by one.
type DisplayShift struct {
	Name  string
	Start string
	End   string
	Color string
}

func (v AssignmentView) Display() DisplayShift {
	pick := func(override, template *string) string {
		if override != nil && *override != "" {
			return *override
		}
		if template != nil {
			return *template
		}
		return ""
	}
	return DisplayShift{
		Name:  pick(v.CustomName, v.ShiftName),
		Start: pick(v.CustomStart, v.ShiftStart),
		End:   pick(v.CustomEnd, v.ShiftEnd),
		Color: pick(v.CustomColor, v.ShiftColor),
	}
}

type EmployeeRef struct {
	ID       uuid.UUID
	FullName string
	IsActive bool
}

type ShiftRef struct {
	ID        uuid.UUID
	Name      string
	StartTime string
	EndTime   string
	Color     string
	IsActive  bool
}
