package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetRate(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(domain.Rate), args.Error(1)
}

func (m *MockRateSource) IsAvailable(ctx context.Context) bool { return true }

func (m *MockRateSource) Name() string { return "mock" }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type HandlersSuite struct {
	suite.Suite
	history *memory.HistoryRepository
	source  *MockRateSource
	engine  *gin.Engine
	now     time.Time
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	registry := domain.MustDefaultPairRegistry()
	s.history = memory.NewHistoryRepository()
	s.source = &MockRateSource{}
	s.now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	query := usecase.NewRateQueryUsecase(registry, s.history, s.source, usecase.DateMissLatest, nil, nil)
	pairs := usecase.NewCurrencyPairUsecase(memory.NewCurrencyPairRepository(), registry, nil)

	rates := NewRateHandler(query, false)
	rates.now = func() time.Time { return s.now }

	s.engine = gin.New()
	api := s.engine.Group("/api/v1")
	rates.Register(api)
	NewPairHandler(pairs, query, false).Register(api)
}

func (s *HandlersSuite) seed(base, quote string, value float64, ts time.Time) {
	pair, err := domain.NewPair(base, quote)
	s.Require().NoError(err)
	target, err := domain.MustDefaultPairRegistry().ResolveTarget(pair)
	s.Require().NoError(err)
	rate, err := domain.NewRate(value, ts)
	s.Require().NoError(err)
	s.Require().NoError(s.history.ForTarget(target).Append(context.Background(), domain.NewRateRecord(rate)))
}

func (s *HandlersSuite) do(method, path, body string) (int, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *HandlersSuite) TestCurrencies() {
	code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/currencies", "")
	s.Equal(http.StatusOK, code)
	s.True(env.Success)

	var data struct {
		Currencies []string `json:"currencies"`
		Total      int      `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal(len(domain.SupportedCurrencies()), data.Total)
	s.Contains(data.Currencies, "USD")
}

func (s *HandlersSuite) TestLatestRate() {
	s.seed("USD", "EUR", 0.85, s.now.Add(-2*time.Hour))
	s.seed("USD", "EUR", 0.86, s.now.Add(-time.Hour))

	code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/usd/eur", "")
	s.Require().Equal(http.StatusOK, code)

	var data struct {
		Pair   string  `json:"pair"`
		Rate   float64 `json:"rate"`
		Source string  `json:"source"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("USD/EUR", data.Pair)
	s.Equal(0.86, data.Rate)
	s.Equal("historical", data.Source)
}

func (s *HandlersSuite) TestDatedRateUsesMinuteBucket() {
	s.seed("USD", "EUR", 0.85, time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC))
	s.seed("USD", "EUR", 0.90, s.now.Add(-time.Minute))

	code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/USD/EUR?date=2024-01-01+12:00:59", "")
	s.Require().Equal(http.StatusOK, code)

	var data struct {
		Rate float64 `json:"rate"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal(0.85, data.Rate)
}

func (s *HandlersSuite) TestRateFallsBackToSource() {
	rate, err := domain.NewRate(1.27, s.now)
	s.Require().NoError(err)
	s.source.On("GetRate", mock.Anything, mock.Anything).Return(rate, nil).Once()

	code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/GBP/USD", "")
	s.Require().Equal(http.StatusOK, code)
	s.Contains(string(env.Data), `"source":"external"`)
	s.source.AssertExpectations(s.T())
}

func (s *HandlersSuite) TestErrorStatuses() {
	s.source.On("GetRate", mock.Anything, mock.Anything).
		Return(domain.Rate{}, fmt.Errorf("%w: provider down", domain.ErrSourceUnavailable))

	cases := []struct {
		name string
		path string
		code int
	}{
		{"unknown currency", "/api/v1/exchange-rates/USD/XXX", http.StatusBadRequest},
		{"same currency", "/api/v1/exchange-rates/USD/USD", http.StatusBadRequest},
		{"unsupported pair", "/api/v1/exchange-rates/EUR/GBP", http.StatusBadRequest},
		{"bad date", "/api/v1/exchange-rates/USD/EUR?date=yesterday", http.StatusBadRequest},
		{"future date", "/api/v1/exchange-rates/USD/EUR?date=2030-01-01", http.StatusBadRequest},
		{"inverted range", "/api/v1/exchange-rates/USD/EUR/history?from=2024-01-02&to=2024-01-01", http.StatusBadRequest},
		{"source down", "/api/v1/exchange-rates/USD/RUB", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			code, env := s.do(http.MethodGet, tc.path, "")
			s.Equal(tc.code, code)
			s.False(env.Success)
			s.NotEmpty(env.Error)
		})
	}
}

func (s *HandlersSuite) TestHistoryAndStatistics() {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	for i, v := range []float64{1.0, 2.0, 3.0} {
		s.seed("EUR", "USD", v, base.Add(time.Duration(i)*time.Hour))
	}

	code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/EUR/USD/history?from=2024-01-15+10:00:00&to=2024-01-15+11:00:00", "")
	s.Require().Equal(http.StatusOK, code)
	var hist struct {
		Count int `json:"count"`
		Rates []struct {
			Rate float64 `json:"rate"`
		} `json:"rates"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &hist))
	s.Equal(2, hist.Count)
	s.Equal(2.0, hist.Rates[0].Rate)
	s.Equal(3.0, hist.Rates[1].Rate)

	code, env = s.do(http.MethodGet, "/api/v1/exchange-rates/EUR/USD/statistics", "")
	s.Require().Equal(http.StatusOK, code)
	var stats struct {
		Statistics struct {
			Min   float64 `json:"min"`
			Max   float64 `json:"max"`
			Avg   float64 `json:"avg"`
			Count int64   `json:"count"`
		} `json:"statistics"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &stats))
	s.Equal(1.0, stats.Statistics.Min)
	s.Equal(3.0, stats.Statistics.Max)
	s.Equal(2.0, stats.Statistics.Avg)
	s.Equal(int64(3), stats.Statistics.Count)
}

func (s *HandlersSuite) TestHistoryBoundsKeepSeconds() {
	s.seed("EUR", "USD", 1.10, time.Date(2024, 1, 14, 10, 0, 20, 0, time.UTC))
	s.seed("EUR", "USD", 1.20, time.Date(2024, 1, 14, 18, 0, 0, 0, time.UTC))

	count := func(query string) int {
		code, env := s.do(http.MethodGet, "/api/v1/exchange-rates/EUR/USD/history?"+query, "")
		s.Require().Equal(http.StatusOK, code, env.Error)
		var hist struct {
			Count int `json:"count"`
		}
		s.Require().NoError(json.Unmarshal(env.Data, &hist))
		return hist.Count
	}

	s.Equal(1, count("from=2024-01-14&to=2024-01-14+10:00:30"))
	s.Equal(0, count("from=2024-01-14+10:00:21&to=2024-01-14+10:00:59"))
	s.Equal(2, count("from=2024-01-14&to=2024-01-14"))
	s.Equal(2, count("from=14.01.2024&to=14.01.2024"))
}

func (s *HandlersSuite) TestPairLifecycle() {
	code, env := s.do(http.MethodGet, "/api/v1/pairs", "")
	s.Require().Equal(http.StatusOK, code)
	s.Contains(string(env.Data), `"pair":"USD/EUR"`)

	code, env = s.do(http.MethodPost, "/api/v1/pairs/tracked", `{"base":"usd","quote":"gbp"}`)
	s.Require().Equal(http.StatusCreated, code, env.Error)
	var created struct {
		ID     int64 `json:"id"`
		Active bool  `json:"active"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	s.True(created.Active)

	code, _ = s.do(http.MethodPost, "/api/v1/pairs/tracked", `{"base":"USD","quote":"GBP"}`)
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/pairs/tracked", `{"base":"EUR","quote":"GBP"}`)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/pairs/tracked/%d/deactivate", created.ID), "")
	s.Equal(http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/v1/pairs/tracked", "")
	s.Require().Equal(http.StatusOK, code)
	s.Contains(string(env.Data), `"active":false`)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/pairs/tracked/%d", created.ID), "")
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/pairs/tracked/%d", created.ID), "")
	s.Equal(http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/pairs/tracked/abc", "")
	s.Equal(http.StatusBadRequest, code)
}

func TestInternalErrorsAreHiddenOutsideDevelopment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, expose := range []bool{false, true} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		errorWriter{expose: expose}.write(c, fmt.Errorf("%w: connection refused", domain.ErrStorageUnavailable))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		if expose {
			assert.Contains(t, w.Body.String(), "connection refused")
		} else {
			assert.NotContains(t, w.Body.String(), "connection refused")
			assert.Contains(t, w.Body.String(), "internal server error")
		}
	}
}

func TestParseQueryDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	for _, raw := range []string{
		"2024-01-01T10:30:45",
		"2024-01-01 10:30:45",
		"2024-01-01 10:30",
		"01.01.2024 10:30:59",
		"2024-01-01T10:30:45Z",
	} {
		got, err := parseQueryDate(raw, now)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	got, err := parseQueryDate("01.01.2024", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)

	for _, raw := range []string{"", "tomorrow", "2024-06-02", "2010-01-01"} {
		_, err := parseQueryDate(raw, now)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestParseRangeEnd(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseRangeEnd("2024-01-01 10:00:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC), got)

	got, err = parseRangeEnd("2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC), got)

	_, err = parseRangeEnd("2024-06-02", now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
