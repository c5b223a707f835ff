package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/common"

	"github.com/redis/go-redis/v9"
)

type redisProgressPublisher struct {
	client *redis.Client
}

// NewRedisProgressPublisher relays progress events to Redis pub/sub.
func NewRedisProgressPublisher(client *redis.Client) ProgressPublisher {
	return &redisProgressPublisher{client: client}
}

// ProgressChannel returns the per-task channel name.
func ProgressChannel(taskID string) string {
	return fmt.Sprintf("%s.%s", common.RedisChannelAnalysisProgress, taskID)
}

// Publish sends event to the task channel and to the shared channel.
func (p *redisProgressPublisher) Publish(ctx context.Context, event dto.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal progress event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, ProgressChannel(event.TaskID), payload)
	pipe.Publish(ctx, common.RedisChannelAnalysisProgressAll, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}
	return nil
}
