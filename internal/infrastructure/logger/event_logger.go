package logger

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"gorm.io/gorm"
)

// TaskFailedEvent is the audit row written for every dead-lettered task.
type TaskFailedEvent struct {
	ID        uint   `gorm:"primaryKey"`
	Stage     string `gorm:"index"`
	PairKey   string `gorm:"index"`
	Payload   string
	Attempts  int
	Error     string
	Timestamp time.Time `gorm:"index"`
}

func (TaskFailedEvent) TableName() string {
	return "rate_task_failures"
}

type TaskEventLogger interface {
	LogTaskFailed(ctx context.Context, event TaskFailedEvent) error
}

type PGTaskEventLogger struct {
	db *gorm.DB
}

func NewPGTaskEventLogger(db *gorm.DB) *PGTaskEventLogger {
	return &PGTaskEventLogger{db: db}
}

func (l *PGTaskEventLogger) LogTaskFailed(ctx context.Context, event TaskFailedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}

// Send records a dead letter, so the logger can sit next to the Kafka
// dead-letter topic in a sink chain.
func (l *PGTaskEventLogger) Send(ctx context.Context, letter domain.DeadLetter) error {
	return l.LogTaskFailed(ctx, ToTaskFailedEvent(letter))
}

func ToTaskFailedEvent(letter domain.DeadLetter) TaskFailedEvent {
	return TaskFailedEvent{
		Stage:     letter.Stage,
		PairKey:   letter.Key,
		Payload:   string(letter.Payload),
		Attempts:  letter.Attempts,
		Error:     letter.Error,
		Timestamp: letter.FailedAt,
	}
}
