package swap

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ShiftSwapRequest struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID             uuid.UUID `gorm:"type:uuid;not null;index"`
	RequesterID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_swap_pending_tuple,where:status = 'pending'"`
	TargetID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_swap_pending_tuple,where:status = 'pending'"`
	OriginalAssignmentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_swap_pending_tuple,where:status = 'pending'"`
	RequestedAssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_swap_pending_tuple,where:status = 'pending'"`
	SwapDate              time.Time `gorm:"type:date;not null"`
	Reason                string
	Status                string     `gorm:"not null;default:pending;index"`
	ApprovedBy            *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt            *time.Time
	Notes                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
