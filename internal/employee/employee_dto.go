package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	FullName   string          `json:"full_name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Role       string          `json:"role" binding:"required"`
	LocationID string          `json:"location_id" binding:"omitempty,uuid"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

type TransferEmployeeRequest struct {
	Role       string `json:"role" binding:"required"`
	LocationID string `json:"location_id" binding:"omitempty,uuid"`
}

type AddToTeamRequest struct {
	TeamID string `json:"team_id" binding:"required,uuid"`
}

type EmployeeResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	FullName      string          `json:"full_name"`
	Email         string          `json:"email"`
	Role          string          `json:"role"`
	LocationID    string          `json:"location_id,omitempty"`
	PrimaryTeamID string          `json:"primary_team_id,omitempty"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	IsActive      bool            `json:"is_active"`
}
