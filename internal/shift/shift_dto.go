package shift

type CreateShiftRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
	Color     string `json:"color" binding:"omitempty,max=16"`
}

type ShiftResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color,omitempty"`
	IsActive  bool   `json:"is_active"`
}
