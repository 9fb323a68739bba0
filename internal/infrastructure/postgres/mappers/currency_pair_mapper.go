package mappers

import (
	"fmt"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/models"
)

func ToGORMCurrencyPair(pair *domain.CurrencyPair) *models.CurrencyPairModel {
	return &models.CurrencyPairModel{
		ID:            pair.ID,
		BaseCurrency:  pair.Pair.Base.Code(),
		QuoteCurrency: pair.Pair.Quote.Code(),
		IsActive:      pair.Active,
		CreatedAt:     pair.CreatedAt,
		UpdatedAt:     pair.UpdatedAt,
	}
}

// ToDomainCurrencyPair fails if the stored codes are no longer supported.
func ToDomainCurrencyPair(model *models.CurrencyPairModel) (*domain.CurrencyPair, error) {
	pair, err := domain.NewPair(model.BaseCurrency, model.QuoteCurrency)
	if err != nil {
		return nil, fmt.Errorf("currency pair %d: %w", model.ID, err)
	}
	return &domain.CurrencyPair{
		ID:        model.ID,
		Pair:      pair,
		Active:    model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}
