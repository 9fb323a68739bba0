package models

import "time"

// RateRecordModel is the row layout shared by every per-pair history table.
// The table name is chosen per query with db.Table(target).
type RateRecordModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Rate      float64   `gorm:"column:rate;type:numeric(20,8);not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}
