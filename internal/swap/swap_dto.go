package swap

import (
	"time"

	"go-workforce/internal/assignment"
)

type ProposeSwapRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Reason   string `json:"reason" binding:"max=500"`
}

type ResolveSwapRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Notes  string `json:"notes" binding:"max=500"`
}

type SwapResponse struct {
	ID                    string     `json:"id"`
	RequesterID           string     `json:"requester_id"`
	TargetID              string     `json:"target_id"`
	OriginalAssignmentID  string     `json:"original_assignment_id"`
	RequestedAssignmentID string     `json:"requested_assignment_id"`
	Date                  string     `json:"date"`
	Reason                string     `json:"reason,omitempty"`
	Status                string     `json:"status"`
	ApprovedBy            string     `json:"approved_by,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type ResolveSwapResponse struct {
	Request     SwapResponse                    `json:"request"`
	Assignments []assignment.AssignmentResponse `json:"assignments,omitempty"`
}
