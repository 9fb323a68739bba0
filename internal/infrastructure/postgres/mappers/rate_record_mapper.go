package mappers

import (
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/models"
)

func ToGORMRateRecord(record domain.RateRecord) *models.RateRecordModel {
	return &models.RateRecordModel{
		ID:        record.ID,
		Rate:      record.Value,
		Timestamp: record.Timestamp.UTC(),
		CreatedAt: record.RecordedAt.UTC(),
	}
}

func ToDomainRateRecord(model *models.RateRecordModel) domain.RateRecord {
	return domain.RateRecord{
		ID:         model.ID,
		Value:      model.Rate,
		Timestamp:  model.Timestamp.UTC(),
		RecordedAt: model.CreatedAt.UTC(),
	}
}
