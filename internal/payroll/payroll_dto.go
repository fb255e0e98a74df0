package payroll

import "time"

type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type AdvancePaymentRequest struct {
	Status string `json:"status" binding:"required,oneof=approved paid"`
}

type PeriodResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Status       string     `json:"status"`
	CalculatedAt *time.Time `json:"calculated_at,omitempty"`
}

type CalculateResponse struct {
	PeriodID           string `json:"period_id"`
	EmployeesProcessed int    `json:"employees_processed"`
	EmployeesFailed    int    `json:"employees_failed"`
}

type RecordResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	PeriodID      string     `json:"period_id"`
	TotalHours    string     `json:"total_hours"`
	RegularHours  string     `json:"regular_hours"`
	OvertimeHours string     `json:"overtime_hours"`
	HourlyRate    string     `json:"hourly_rate"`
	HourlyPay     string     `json:"hourly_pay"`
	OvertimePay   string     `json:"overtime_pay"`
	BonusAmount   string     `json:"bonus_amount"`
	Deductions    string     `json:"deductions"`
	GrossPay      string     `json:"gross_pay"`
	NetPay        string     `json:"net_pay"`
	LateCount     int        `json:"late_count"`
	NoShowCount   int        `json:"no_show_count"`
	AverageRating string     `json:"average_rating"`
	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
