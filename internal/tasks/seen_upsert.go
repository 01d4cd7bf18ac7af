package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/studyflow/feed-service/internal/models"
)

// TypeSeenUpsert is the task type for durable seen ledger writes
const TypeSeenUpsert = "progress:seen_upsert"

// QueueProgress is the queue carrying progress side effects
const QueueProgress = "progress"

// SeenUpsertPayload carries one seen ledger write
type SeenUpsertPayload struct {
	LearnerID   int     `json:"learnerId"`
	FeedID      string  `json:"feedId"`
	ProgressPct float64 `json:"progressPct"`
}

// NewSeenUpsertTask creates a seen upsert task
func NewSeenUpsertTask(learnerID int, feedID string, entry models.SeenEntry) (*asynq.Task, error) {
	payload, err := json.Marshal(SeenUpsertPayload{
		LearnerID:   learnerID,
		FeedID:      feedID,
		ProgressPct: entry.ProgressPct,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode seen upsert payload: %w", err)
	}
	return asynq.NewTask(TypeSeenUpsert, payload), nil
}

// ParseSeenUpsertPayload decodes a seen upsert task payload
func ParseSeenUpsertPayload(t *asynq.Task) (SeenUpsertPayload, error) {
	var payload SeenUpsertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return SeenUpsertPayload{}, fmt.Errorf("failed to decode seen upsert payload: %w", err)
	}
	return payload, nil
}

// Client enqueues progress side effects
type Client struct {
	asynqClient *asynq.Client
}

// NewClient creates a new task client
func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{
		asynqClient: asynqClient,
	}
}

// EnqueueSeenUpsert schedules a durable seen ledger write. The task is
// retried by the queue, so a transient database outage cannot lose the
// completion transition.
func (c *Client) EnqueueSeenUpsert(ctx context.Context, learnerID int, feedID string, entry models.SeenEntry) error {
	task, err := NewSeenUpsertTask(learnerID, feedID, entry)
	if err != nil {
		return err
	}
	if _, err := c.asynqClient.EnqueueContext(ctx, task, asynq.Queue(QueueProgress), asynq.MaxRetry(10)); err != nil {
		return fmt.Errorf("failed to enqueue seen upsert: %w", err)
	}
	return nil
}
