package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/repository/memory"
)

func TestAlertLogDedupKey(t *testing.T) {
	ctx := context.Background()
	log := repository.NewAlertLog(memory.NewStore())

	sent, err := log.AlreadySent(ctx, "u1", "task-1", domain.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, sent)

	require.NoError(t, log.Record(ctx, domain.AlertRecord{
		UserID:      "u1",
		TaskID:      "task-1",
		Method:      domain.ChannelEmail,
		AlertSentAt: time.Now(),
	}))

	sent, err = log.AlreadySent(ctx, "u1", "task-1", domain.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, sent)

	// Each leg of the triple is part of the key.
	sent, err = log.AlreadySent(ctx, "u1", "task-1", domain.ChannelWhatsApp)
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = log.AlreadySent(ctx, "u2", "task-1", domain.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = log.AlreadySent(ctx, "u1", "task-2", domain.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, sent)
}
