package events

import "time"

const NotificationTopic = "workforce.notifications.v1"

const (
	SwapRequested = "swap.requested"
	SwapResolved  = "swap.resolved"
	LeaveResolved = "leave.resolved"
)

// Fixed audience identifiers for oversight roles.
const (
	AudienceAdmin    = "role:admin"
	AudienceManager  = "role:manager"
	AudienceTeamLead = "role:team_lead"
)

// OversightAudiences are notified about every swap request and resolution.
var OversightAudiences = []string{AudienceAdmin, AudienceManager, AudienceTeamLead}

func EmployeeAudience(employeeID string) string {
	return "employee:" + employeeID
}

type NotificationEvent struct {
	EventType     string            `json:"event_type"`
	RequestID     string            `json:"request_id,omitempty"`
	CompanyID     string            `json:"company_id"`
	AggregateType string            `json:"aggregate_type"`
	AggregateID   string            `json:"aggregate_id"`
	Recipients    []string          `json:"recipients"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Data          map[string]string `json:"data,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
