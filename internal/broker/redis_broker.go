package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisProgressBroker implements ProgressBroker using Redis pub/sub with one
// channel per user.
type RedisProgressBroker struct {
	client *redis.Client
}

func NewRedisProgressBroker(client *redis.Client) *RedisProgressBroker {
	return &RedisProgressBroker{client: client}
}

// Connect parses redisURL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func channel(userID uuid.UUID) string {
	return fmt.Sprintf("progress:%s", userID)
}

func (r *RedisProgressBroker) Publish(ctx context.Context, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, channel(event.UserID), data).Err()
}

func (r *RedisProgressBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan ProgressEvent, error) {
	pubsub := r.client.Subscribe(ctx, channel(userID))

	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	events := make(chan ProgressEvent, 16)

	go func() {
		defer close(events)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case redisMsg, ok := <-msgs:
				if !ok {
					return
				}

				var event ProgressEvent
				if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
					logger.Log.Warn("Dropping malformed progress event",
						zap.String("channel", redisMsg.Channel),
						zap.Error(err),
					)
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// Close releases the underlying client.
func (r *RedisProgressBroker) Close() error {
	return r.client.Close()
}
