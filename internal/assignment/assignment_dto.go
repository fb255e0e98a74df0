package assignment

import "time"

type CreateAssignmentRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required"`
	WorkDate    string `json:"work_date" binding:"required"`
	ShiftID     string `json:"shift_id"`
	CustomName  string `json:"custom_name" binding:"max=100"`
	CustomStart string `json:"custom_start"`
	CustomEnd   string `json:"custom_end"`
	CustomColor string `json:"custom_color" binding:"max=16"`
	Notes       string `json:"notes" binding:"max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignmentResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name,omitempty"`
	WorkDate     string     `json:"work_date"`
	ShiftID      string     `json:"shift_id,omitempty"`
	ShiftName    string     `json:"shift_name"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Color        string     `json:"color,omitempty"`
	IsOverride   bool       `json:"is_override"`
	Status       string     `json:"status"`
	AssignedBy   string     `json:"assigned_by,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

type EmployeeWeek struct {
	EmployeeID  string                        `json:"employee_id"`
	FullName    string                        `json:"full_name"`
	Assignments map[string]AssignmentResponse `json:"assignments"`
}

type WeekScheduleResponse struct {
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Employees []EmployeeWeek `json:"employees"`
}
