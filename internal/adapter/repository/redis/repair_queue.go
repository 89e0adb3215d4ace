package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/assetledger/internal/domain"
)

// RepairQueueKey is the list holding txids awaiting projection repair.
const RepairQueueKey = "assetledger:repair_queue"

// RepairQueue implements usecase.RepairQueue as a Redis list shared by all
// service instances. LPUSH and BRPOP make it FIFO.
type RepairQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRepairQueue creates a queue on RepairQueueKey.
func NewRepairQueue(client redis.UniversalClient) *RepairQueue {
	return &RepairQueue{
		client: client,
		key:    RepairQueueKey,
	}
}

func (q *RepairQueue) Enqueue(ctx context.Context, txid string) error {
	if err := q.client.LPush(ctx, q.key, txid).Err(); err != nil {
		return domain.StorageError("enqueue repair", err)
	}
	return nil
}

func (q *RepairQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", domain.StorageError("dequeue repair", err)
	}

	// BRPOP replies with [key, value].
	return result[1], nil
}

// Len returns the number of queued txids.
func (q *RepairQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, domain.StorageError("repair queue length", err)
	}
	return n, nil
}
