package memory

import (
	"context"
	"errors"
	"time"

	"github.com/iho/assetledger/internal/domain"
)

// DefaultRepairQueueSize bounds the in-process repair queue.
const DefaultRepairQueueSize = 1024

var errQueueFull = errors.New("repair queue is full")

// RepairQueue is an in-process FIFO of txids awaiting projection repair.
type RepairQueue struct {
	ch chan string
}

// NewRepairQueue creates a queue holding at most size txids.
func NewRepairQueue(size int) *RepairQueue {
	if size <= 0 {
		size = DefaultRepairQueueSize
	}
	return &RepairQueue{ch: make(chan string, size)}
}

func (q *RepairQueue) Enqueue(ctx context.Context, txid string) error {
	select {
	case q.ch <- txid:
		return nil
	case <-ctx.Done():
		return domain.StorageError("enqueue repair", ctx.Err())
	default:
		return domain.StorageError("enqueue repair", errQueueFull)
	}
}

func (q *RepairQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case txid := <-q.ch:
		return txid, nil
	case <-timer.C:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len returns the number of queued txids.
func (q *RepairQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}
