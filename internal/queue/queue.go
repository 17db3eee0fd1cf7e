// Package queue implements the three named task queues carrying pipeline
// work items. Queues are Redis lists: LPUSH to enqueue, RPOP to dequeue,
// so each queue is FIFO and a pop is atomic across competing consumers.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	r "github.com/redis/go-redis/v9"
)

const (
	// Sync carries catalog synchronization triggers.
	Sync = "queue:sync"
	// ResumeProcessing carries resume download/extraction tasks.
	ResumeProcessing = "queue:resume_processing"
	// Rating carries AI rating tasks.
	Rating = "queue:rating"
)

const (
	KindSync    = "sync"
	KindExtract = "extract"
	KindRate    = "rate"
)

// Task is the envelope pushed onto a queue. Payload fields are
// stage-specific: extraction tasks carry AppID and FileID, rating tasks
// carry AppID only, sync tasks carry at most a Source marker.
type Task struct {
	ID     string `json:"id,omitempty"`
	Kind   string `json:"kind"`
	AppID  int    `json:"appId,omitempty"`
	FileID int    `json:"fileId,omitempty"`
	Source string `json:"source,omitempty"`
}

type RedisQueue struct {
	rdb *r.Client
}

func New(rdb *r.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue pushes the task onto the named queue. A missing task ID is
// assigned before marshalling so every envelope is traceable in logs.
func (q *RedisQueue) Enqueue(ctx context.Context, name string, task *Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := q.rdb.LPush(ctx, name, payload).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", name, err)
	}

	return nil
}

// Dequeue pops the oldest task from the named queue. It returns (nil, nil)
// when the queue is empty.
func (q *RedisQueue) Dequeue(ctx context.Context, name string) (*Task, error) {
	payload, err := q.rdb.RPop(ctx, name).Result()
	if errors.Is(err, r.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop from %s: %w", name, err)
	}

	var task Task
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return nil, fmt.Errorf("unmarshal task from %s: %w", name, err)
	}

	return &task, nil
}
