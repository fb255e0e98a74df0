package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:uq_employee_email,priority:1"`
	FullName      string          `gorm:"not null"`
	Email         string          `gorm:"not null;uniqueIndex:uq_employee_email,priority:2"`
	Role          string          `gorm:"not null;default:employee"`
	LocationID    *uuid.UUID      `gorm:"type:uuid;index"`
	PrimaryTeamID *uuid.UUID      `gorm:"type:uuid"`
	HourlyRate    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TeamMember struct {
	TeamID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index"`
	JoinedAt   time.Time
}

// ManagerLocation lists the locations a manager administers.
type ManagerLocation struct {
	CompanyID  uuid.UUID `gorm:"type:uuid;index"`
	ManagerID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"type:uuid;primaryKey"`
}
