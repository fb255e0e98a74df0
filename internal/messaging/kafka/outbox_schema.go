package kafka

import (
	"time"

	"github.com/google/uuid"
)

// OutboxRecord is the gorm shape of outbox_events, used only for schema
// creation. The repository itself talks SQL.
type OutboxRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID     *string   `gorm:"type:varchar(64)"`
	CompanyID     uuid.UUID `gorm:"type:uuid;not null"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	EventType     string    `gorm:"type:varchar(100);not null"`
	Topic         string    `gorm:"type:varchar(150);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_outbox_status_created,priority:1"`
	RetryCount    int       `gorm:"not null;default:0"`
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	ErrorMessage  *string
	CreatedAt     time.Time `gorm:"index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time
}

func (OutboxRecord) TableName() string {
	return "outbox_events"
}
