package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

const (
	FreeCurrencyName    = "freecurrency"
	DefaultFreeCurrency = "https://api.freecurrencyapi.com"
)

type FreeCurrencyProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

type freeCurrencyResponse struct {
	Data map[string]float64 `json:"data"`
}

func NewFreeCurrencyProvider(baseURL, apiKey string, timeout time.Duration) *FreeCurrencyProvider {
	if baseURL == "" {
		baseURL = DefaultFreeCurrency
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FreeCurrencyProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (p *FreeCurrencyProvider) Name() string {
	return FreeCurrencyName
}

func (p *FreeCurrencyProvider) GetRate(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	if p.apiKey == "" {
		return domain.Rate{}, fmt.Errorf("%w: freecurrency api key is not configured", domain.ErrSourceUnavailable)
	}

	q := url.Values{}
	q.Set("apikey", p.apiKey)
	q.Set("base_currency", pair.Base.Code())
	q.Set("currencies", pair.Quote.Code())
	endpoint := p.baseURL + "/v1/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("%w: failed to create request: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Rate{}, fmt.Errorf("%w: failed to get rates from freecurrency: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return domain.Rate{}, fmt.Errorf("%w: freecurrency API returned status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return domain.Rate{}, fmt.Errorf("%w: freecurrency API returned status %d", domain.ErrInvalidResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Rate{}, fmt.Errorf("%w: failed to read response body: %v", domain.ErrSourceUnavailable, err)
	}

	var parsed freeCurrencyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Rate{}, fmt.Errorf("%w: failed to parse freecurrency response: %v", domain.ErrInvalidResponse, err)
	}

	value, ok := parsed.Data[pair.Quote.Code()]
	if !ok {
		return domain.Rate{}, fmt.Errorf("%w: no %s quote in freecurrency response", domain.ErrInvalidResponse, pair.Quote)
	}

	rate, err := domain.NewRate(value, p.now())
	if err != nil {
		return domain.Rate{}, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	return rate, nil
}

func (p *FreeCurrencyProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	probe := domain.Pair{Base: domain.MustCurrency("USD"), Quote: domain.MustCurrency("EUR")}
	_, err := p.GetRate(ctx, probe)
	return err == nil
}
