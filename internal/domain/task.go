package domain

import (
	"context"
	"time"
)

type FetchRateTask struct {
	TaskID     string    `json:"task_id"`
	Base       string    `json:"base"`
	Quote      string    `json:"quote"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type SaveRateTask struct {
	TaskID    string    `json:"task_id"`
	Base      string    `json:"base"`
	Quote     string    `json:"quote"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

type FetchTaskQueue interface {
	EnqueueFetch(ctx context.Context, task FetchRateTask) error
}

type SaveTaskQueue interface {
	EnqueueSave(ctx context.Context, task SaveRateTask) error
}

// SaveState is the progress of a save task. Nothing is persisted between states.
type SaveState string

const (
	SaveStateReceived SaveState = "received"
	SaveStateRouted   SaveState = "routed"
	SaveStateAppended SaveState = "appended"
	SaveStateFailed   SaveState = "failed"
)

const (
	StageFetch = "fetch"
	StageSave  = "save"
)

// DeadLetter describes a task delivery that will not be retried again.
type DeadLetter struct {
	Stage    string    `json:"stage"`
	Key      string    `json:"key"`
	Payload  []byte    `json:"payload"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
