package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto"
	rateResponse "github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto/rate/response"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
	"github.com/gin-gonic/gin"
)

const defaultHistoryWindow = 24 * time.Hour

type RateQueryService interface {
	GetRate(ctx context.Context, pair domain.Pair, date *time.Time) (*usecase.RateQuote, error)
	GetRange(ctx context.Context, pair domain.Pair, from, to time.Time) (*usecase.RangeResult, error)
	GetStatistics(ctx context.Context, pair domain.Pair) (*usecase.StatisticsResult, error)
	SupportedCurrencies() []string
}

type RateHandler struct {
	query RateQueryService
	now   func() time.Time
	errs  errorWriter
}

// NewRateHandler serves the read API. exposeErrors adds internal error text
// to 5xx responses.
func NewRateHandler(query RateQueryService, exposeErrors bool) *RateHandler {
	return &RateHandler{
		query: query,
		now:   func() time.Time { return time.Now().UTC() },
		errs:  errorWriter{expose: exposeErrors},
	}
}

func (h *RateHandler) Register(r gin.IRouter) {
	g := r.Group("/exchange-rates")
	g.GET("/currencies", h.GetCurrencies)
	g.GET("/:base/:quote", h.GetRate)
	g.GET("/:base/:quote/history", h.GetHistory)
	g.GET("/:base/:quote/statistics", h.GetStatistics)
}

func (h *RateHandler) GetCurrencies(c *gin.Context) {
	currencies := h.query.SupportedCurrencies()
	c.JSON(http.StatusOK, dto.OK(rateResponse.CurrenciesResponse{
		Currencies: currencies,
		Total:      len(currencies),
	}, "supported currencies"))
}

// GetRate handles GET /exchange-rates/:base/:quote?date=...
func (h *RateHandler) GetRate(c *gin.Context) {
	pair, err := domain.NewPair(c.Param("base"), c.Param("quote"))
	if err != nil {
		h.errs.write(c, err)
		return
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		t, err := parseQueryDate(raw, h.now())
		if err != nil {
			h.errs.write(c, err)
			return
		}
		date = &t
	}

	quote, err := h.query.GetRate(c.Request.Context(), pair, date)
	if err != nil {
		h.errs.write(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(rateResponse.RateResponse{
		BaseCurrency:  pair.Base.Code(),
		QuoteCurrency: pair.Quote.Code(),
		Pair:          pair.String(),
		Rate:          quote.Value,
		Timestamp:     quote.Timestamp,
		Source:        string(quote.Provenance),
	}, ""))
}

// GetHistory handles GET /exchange-rates/:base/:quote/history?from=...&to=...
// Missing bounds default to the last 24 hours. Bounds keep their seconds; a
// date-only to covers its whole day.
func (h *RateHandler) GetHistory(c *gin.Context) {
	pair, err := domain.NewPair(c.Param("base"), c.Param("quote"))
	if err != nil {
		h.errs.write(c, err)
		return
	}

	now := h.now()
	to := now
	if raw := c.Query("to"); raw != "" {
		if to, err = parseRangeEnd(raw, now); err != nil {
			h.errs.write(c, err)
			return
		}
	}
	from := to.Add(-defaultHistoryWindow)
	if raw := c.Query("from"); raw != "" {
		if from, _, err = parseDate(raw, now); err != nil {
			h.errs.write(c, err)
			return
		}
	}

	res, err := h.query.GetRange(c.Request.Context(), pair, from, to)
	if err != nil {
		h.errs.write(c, err)
		return
	}

	points := make([]rateResponse.RatePoint, 0, len(res.Records))
	for _, rec := range res.Records {
		points = append(points, rateResponse.RatePoint{Rate: rec.Value, Timestamp: rec.Timestamp})
	}
	c.JSON(http.StatusOK, dto.OK(rateResponse.HistoryResponse{
		BaseCurrency:  pair.Base.Code(),
		QuoteCurrency: pair.Quote.Code(),
		From:          res.From,
		To:            res.To,
		Count:         len(points),
		Rates:         points,
	}, ""))
}

func (h *RateHandler) GetStatistics(c *gin.Context) {
	pair, err := domain.NewPair(c.Param("base"), c.Param("quote"))
	if err != nil {
		h.errs.write(c, err)
		return
	}

	res, err := h.query.GetStatistics(c.Request.Context(), pair)
	if err != nil {
		h.errs.write(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(rateResponse.StatisticsResponse{
		BaseCurrency:  pair.Base.Code(),
		QuoteCurrency: pair.Quote.Code(),
		Statistics: rateResponse.Statistics{
			Min:   res.Stats.Min,
			Max:   res.Stats.Max,
			Avg:   res.Stats.Avg,
			Count: res.Stats.Count,
		},
	}, ""))
}
