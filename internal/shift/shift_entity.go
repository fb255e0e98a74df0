package shift

import (
	"time"

	"github.com/google/uuid"
)

// Shift is a reusable template. Times are wall-clock HH:MM in the company
// timezone; an end before the start means the shift crosses midnight.
type Shift struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:uq_shift_name,priority:1"`
	Name      string    `gorm:"not null;uniqueIndex:uq_shift_name,priority:2"`
	StartTime string    `gorm:"type:varchar(5);not null"`
	EndTime   string    `gorm:"type:varchar(5);not null"`
	Color     string    `gorm:"type:varchar(16)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
