package repository

import (
	"testing"

	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainPairsSkipsUnsupportedRows(t *testing.T) {
	rows := []*models.CurrencyPairModel{
		{ID: 1, BaseCurrency: "EUR", QuoteCurrency: "USD", IsActive: true},
		{ID: 2, BaseCurrency: "XXX", QuoteCurrency: "USD", IsActive: true},
		{ID: 3, BaseCurrency: "USD", QuoteCurrency: "RUB", IsActive: true},
	}

	pairs := toDomainPairs(rows)

	require.Len(t, pairs, 2)
	assert.Equal(t, int64(1), pairs[0].ID)
	assert.Equal(t, "EURUSD", pairs[0].Pair.Code())
	assert.Equal(t, int64(3), pairs[1].ID)
	assert.Equal(t, "USDRUB", pairs[1].Pair.Code())
}

func TestToDomainPairsEmpty(t *testing.T) {
	assert.Empty(t, toDomainPairs(nil))
}
