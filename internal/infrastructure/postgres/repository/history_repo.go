package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// DefaultHistoryRepository hands out a store per registered table. Targets
// come from the pair registry, which only admits safe identifiers.
type DefaultHistoryRepository struct {
	DB *gorm.DB
}

func NewDefaultHistoryRepository(db *gorm.DB) *DefaultHistoryRepository {
	return &DefaultHistoryRepository{DB: db}
}

func (r *DefaultHistoryRepository) ForTarget(target domain.StorageTarget) domain.HistoryStore {
	return &HistoryStore{DB: r.DB, Target: target}
}

// EnsureTables creates any history table that is missing. Migrations
// provision the default routing table; this covers configured overrides.
func (r *DefaultHistoryRepository) EnsureTables(targets []domain.StorageTarget) error {
	for _, target := range targets {
		if err := r.DB.Table(string(target)).AutoMigrate(&models.RateRecordModel{}); err != nil {
			return fmt.Errorf("ensure history table %s: %w", target, err)
		}
	}
	return nil
}

type HistoryStore struct {
	DB     *gorm.DB
	Target domain.StorageTarget
}

type statisticsRow struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int64
}

func (s *HistoryStore) table(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Table(string(s.Target))
}

func (s *HistoryStore) Append(ctx context.Context, record domain.RateRecord) error {
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	model := mappers.ToGORMRateRecord(record)
	model.ID = 0
	if err := s.table(ctx).Create(model).Error; err != nil {
		return s.storageError("append", err)
	}
	return nil
}

func (s *HistoryStore) Latest(ctx context.Context) (*domain.RateRecord, error) {
	return s.first(latestQuery(s.table(ctx)), "latest")
}

func (s *HistoryStore) AtOrNear(ctx context.Context, t time.Time) (*domain.RateRecord, error) {
	start, end := domain.MinuteBucket(t.UTC())
	return s.first(bucketQuery(s.table(ctx), start, end), "at-or-near")
}

func (s *HistoryStore) Range(ctx context.Context, from, to time.Time) ([]domain.RateRecord, error) {
	var rows []*models.RateRecordModel
	if err := rangeQuery(s.table(ctx), from.UTC(), to.UTC()).Find(&rows).Error; err != nil {
		return nil, s.storageError("range", err)
	}

	records := make([]domain.RateRecord, len(rows))
	for i, row := range rows {
		records[i] = mappers.ToDomainRateRecord(row)
	}
	return records, nil
}

func (s *HistoryStore) Statistics(ctx context.Context) (domain.Statistics, error) {
	var row statisticsRow
	if err := statisticsQuery(s.table(ctx)).Scan(&row).Error; err != nil {
		return domain.Statistics{}, s.storageError("statistics", err)
	}
	return domain.Statistics(row), nil
}

func (s *HistoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := deleteQuery(s.table(ctx), cutoff.UTC()).Delete(&models.RateRecordModel{})
	if res.Error != nil {
		return 0, s.storageError("delete", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *HistoryStore) first(q *gorm.DB, op string) (*domain.RateRecord, error) {
	var row models.RateRecordModel
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, s.storageError(op, err)
	}
	rec := mappers.ToDomainRateRecord(&row)
	return &rec, nil
}

func (s *HistoryStore) storageError(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", domain.ErrStorageUnavailable, op, s.Target, err)
}

func latestQuery(tx *gorm.DB) *gorm.DB {
	return tx.Order(`"timestamp" DESC`).Order("created_at DESC").Order("id DESC").Limit(1)
}

func bucketQuery(tx *gorm.DB, start, end time.Time) *gorm.DB {
	return tx.Where(`"timestamp" >= ? AND "timestamp" < ?`, start, end).
		Order("created_at DESC").Order("id DESC").Limit(1)
}

func rangeQuery(tx *gorm.DB, from, to time.Time) *gorm.DB {
	return tx.Where(`"timestamp" BETWEEN ? AND ?`, from, to).Order(`"timestamp" ASC`).Order("id ASC")
}

func statisticsQuery(tx *gorm.DB) *gorm.DB {
	return tx.Select("COALESCE(MIN(rate), 0) AS min, COALESCE(MAX(rate), 0) AS max, " +
		"COALESCE(AVG(rate), 0) AS avg, COUNT(*) AS count")
}

func deleteQuery(tx *gorm.DB, cutoff time.Time) *gorm.DB {
	return tx.Where(`"timestamp" < ?`, cutoff)
}
