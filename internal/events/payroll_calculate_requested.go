package events

import "time"

const PayrollCalculateRequestedTopic = "workforce.payroll.calculate.requested.v1"

// PayrollCalculateRequestedEvent is published by an external scheduler.
type PayrollCalculateRequestedEvent struct {
	EventType   string    `json:"event_type"`
	CompanyID   string    `json:"company_id"`
	PeriodID    string    `json:"period_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
