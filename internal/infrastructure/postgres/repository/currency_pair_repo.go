package repository

import (
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCurrencyPairRepository struct {
	DB *gorm.DB
}

func NewDefaultCurrencyPairRepository(db *gorm.DB) *DefaultCurrencyPairRepository {
	return &DefaultCurrencyPairRepository{DB: db}
}

func (r *DefaultCurrencyPairRepository) Create(pair *domain.CurrencyPair) error {
	model := mappers.ToGORMCurrencyPair(pair)
	if err := r.DB.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrPairAlreadyExists
		}
		return err
	}
	pair.ID = model.ID
	return nil
}

func (r *DefaultCurrencyPairRepository) GetByID(id int64) (*domain.CurrencyPair, error) {
	var model models.CurrencyPairModel
	if err := r.DB.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPairNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCurrencyPair(&model)
}

func (r *DefaultCurrencyPairRepository) FindByPair(pair domain.Pair) (*domain.CurrencyPair, error) {
	var model models.CurrencyPairModel
	err := r.DB.Where("base_currency = ? AND quote_currency = ?", pair.Base.Code(), pair.Quote.Code()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPairNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCurrencyPair(&model)
}

func (r *DefaultCurrencyPairRepository) Update(pair *domain.CurrencyPair) error {
	updatedAt := pair.UpdatedAt
	if updatedAt == nil {
		now := time.Now().UTC()
		updatedAt = &now
	}
	res := r.DB.Model(&models.CurrencyPairModel{}).Where("id = ?", pair.ID).Updates(map[string]interface{}{
		"is_active":  pair.Active,
		"updated_at": updatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPairNotFound
	}
	return nil
}

func (r *DefaultCurrencyPairRepository) Delete(id int64) error {
	res := r.DB.Delete(&models.CurrencyPairModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPairNotFound
	}
	return nil
}

func (r *DefaultCurrencyPairRepository) ListActive() ([]*domain.CurrencyPair, error) {
	return r.list(r.DB.Where("is_active = ?", true))
}

func (r *DefaultCurrencyPairRepository) ListAll() ([]*domain.CurrencyPair, error) {
	return r.list(r.DB)
}

func (r *DefaultCurrencyPairRepository) list(q *gorm.DB) ([]*domain.CurrencyPair, error) {
	var rows []*models.CurrencyPairModel
	if err := q.Order("base_currency ASC").Order("quote_currency ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPairs(rows), nil
}

// toDomainPairs drops rows whose currencies are no longer supported.
func toDomainPairs(rows []*models.CurrencyPairModel) []*domain.CurrencyPair {
	pairs := make([]*domain.CurrencyPair, 0, len(rows))
	for _, row := range rows {
		p, err := mappers.ToDomainCurrencyPair(row)
		if err != nil {
			slog.Warn("skipping stored currency pair", "id", row.ID, "error", err)
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}
