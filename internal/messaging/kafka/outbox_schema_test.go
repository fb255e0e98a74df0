package kafka_test

import (
	"testing"

	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/shared/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRecordIndexes(t *testing.T) {
	idx := dbtest.Indexes(t, &kafka.OutboxRecord{})

	pending, ok := idx["idx_outbox_status_created"]
	require.True(t, ok)
	assert.Equal(t, []string{"status", "created_at"}, dbtest.Columns(pending))
}
