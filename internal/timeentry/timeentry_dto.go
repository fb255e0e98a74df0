package timeentry

import "time"

// Verification is captured by the client at clock-in, e.g. a liveness or
// location check.
type Verification struct {
	Method     string   `json:"method" binding:"required,max=40"`
	CaptureRef string   `json:"capture_ref" binding:"max=255"`
	Latitude   *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Confidence *float64 `json:"confidence" binding:"omitempty,min=0,max=1"`
}

type ClockInRequest struct {
	AssignmentID string        `json:"assignment_id" binding:"omitempty,uuid"`
	Verification *Verification `json:"verification"`
}

type ClockOutRequest struct {
	CallsHandled *int   `json:"calls_handled" binding:"omitempty,min=0"`
	Rating       *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Remarks      string `json:"remarks" binding:"max=1000"`
}

type ReviewRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Notes  string `json:"notes" binding:"max=1000"`
}

type MarkNoShowRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required,uuid"`
}

type TimeEntryResponse struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	AssignmentID       *string    `json:"assignment_id,omitempty"`
	ClockIn            time.Time  `json:"clock_in"`
	ClockOut           *time.Time `json:"clock_out,omitempty"`
	BreakStart         *time.Time `json:"break_start,omitempty"`
	BreakEnd           *time.Time `json:"break_end,omitempty"`
	BreakMinutes       int        `json:"break_minutes"`
	BreakExceeded      bool       `json:"break_exceeded"`
	TotalHours         string     `json:"total_hours"`
	Status             string     `json:"status"`
	ApprovalStatus     string     `json:"approval_status,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	IsLate             bool       `json:"is_late"`
	IsNoShow           bool       `json:"is_no_show"`
	CallsHandled       *int       `json:"calls_handled,omitempty"`
	Rating             *int       `json:"rating,omitempty"`
	Remarks            string     `json:"remarks,omitempty"`
	ReviewedBy         *string    `json:"reviewed_by,omitempty"`
	ReviewNotes        string     `json:"review_notes,omitempty"`
}
