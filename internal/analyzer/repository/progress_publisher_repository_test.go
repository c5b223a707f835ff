package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProgressPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, ProgressChannel("task-1"), common.RedisChannelAnalysisProgressAll)
	t.Cleanup(func() { _ = sub.Close() })
	for i := 0; i < 2; i++ {
		msg, err := sub.Receive(ctx)
		require.NoError(t, err)
		require.IsType(t, &redis.Subscription{}, msg)
	}

	event := dto.ProgressEvent{
		TaskID:         "task-1",
		Symbol:         "600036",
		Kind:           dto.ProgressCompleted,
		CompletedCount: 1,
		TotalCount:     2,
		Timestamp:      time.Date(2024, 6, 14, 7, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewRedisProgressPublisher(client).Publish(ctx, event))

	got := map[string]dto.ProgressEvent{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var decoded dto.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		got[msg.Channel] = decoded
	}

	assert.Equal(t, event, got["analysis.progress.task-1"])
	assert.Equal(t, event, got[common.RedisChannelAnalysisProgressAll])
}

func TestRedisProgressPublisherUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisProgressPublisher(client).Publish(context.Background(), dto.ProgressEvent{TaskID: "task-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish progress event")
}
