package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

const headerStage = "stage"

// TaskQueue encodes pipeline tasks as JSON and publishes them keyed by pair
// code.
type TaskQueue struct {
	publisher  domain.PublisherPort
	fetchTopic string
	saveTopic  string
}

func NewTaskQueue(publisher domain.PublisherPort, fetchTopic, saveTopic string) *TaskQueue {
	return &TaskQueue{
		publisher:  publisher,
		fetchTopic: fetchTopic,
		saveTopic:  saveTopic,
	}
}

func (q *TaskQueue) EnqueueFetch(ctx context.Context, task domain.FetchRateTask) error {
	v, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode fetch task: %w", err)
	}
	return q.publisher.Publish(ctx, q.fetchTopic, domain.Message{
		Key:     []byte(task.Base + task.Quote),
		Value:   v,
		Headers: map[string]string{headerStage: domain.StageFetch},
	})
}

func (q *TaskQueue) EnqueueSave(ctx context.Context, task domain.SaveRateTask) error {
	v, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode save task: %w", err)
	}
	return q.publisher.Publish(ctx, q.saveTopic, domain.Message{
		Key:     []byte(task.Base + task.Quote),
		Value:   v,
		Headers: map[string]string{headerStage: domain.StageSave},
	})
}

// FetchHandler decodes fetch tasks for handle. Undecodable payloads are
// validation errors and go straight to the dead-letter topic.
func FetchHandler(handle func(context.Context, domain.FetchRateTask) error) domain.MessageHandler {
	return func(ctx context.Context, msg domain.Message) error {
		var task domain.FetchRateTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			return fmt.Errorf("%w: decode fetch task: %v", domain.ErrValidation, err)
		}
		return handle(ctx, task)
	}
}

func SaveHandler(handle func(context.Context, domain.SaveRateTask) error) domain.MessageHandler {
	return func(ctx context.Context, msg domain.Message) error {
		var task domain.SaveRateTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			return fmt.Errorf("%w: decode save task: %v", domain.ErrValidation, err)
		}
		return handle(ctx, task)
	}
}
