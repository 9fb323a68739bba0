package domain

import (
	"fmt"
	"strings"
	"time"
)

// Pair is an ordered (base, quote) couple. USD/EUR and EUR/USD are
// different pairs.
type Pair struct {
	Base  Currency
	Quote Currency
}

func NewPair(base, quote string) (Pair, error) {
	b, err := NewCurrency(base)
	if err != nil {
		return Pair{}, fmt.Errorf("base: %w", err)
	}
	q, err := NewCurrency(quote)
	if err != nil {
		return Pair{}, fmt.Errorf("quote: %w", err)
	}
	if b.Equals(q) {
		return Pair{}, fmt.Errorf("%w: base and quote currencies must differ (%s)", ErrValidation, b)
	}
	return Pair{Base: b, Quote: q}, nil
}

// ParsePair accepts "USD/EUR", "USD-EUR" or "USDEUR".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, sep := range []string{"/", "-", "_"} {
		if base, quote, ok := strings.Cut(s, sep); ok {
			return NewPair(base, quote)
		}
	}
	if len(s) == 6 {
		return NewPair(s[:3], s[3:])
	}
	return Pair{}, fmt.Errorf("%w: malformed currency pair %q", ErrValidation, s)
}

// Code is the registry key, e.g. "USDEUR".
func (p Pair) Code() string {
	return p.Base.Code() + p.Quote.Code()
}

func (p Pair) String() string {
	return p.Base.Code() + "/" + p.Quote.Code()
}

func (p Pair) Equals(other Pair) bool {
	return p.Base.Equals(other.Base) && p.Quote.Equals(other.Quote)
}

// CurrencyPair is a tracked pair. Only the activity flag and timestamps
// change after creation.
type CurrencyPair struct {
	ID        int64
	Pair      Pair
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewCurrencyPair(pair Pair) *CurrencyPair {
	return &CurrencyPair{
		Pair:      pair,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

func (c *CurrencyPair) Activate() {
	c.Active = true
	c.touch()
}

func (c *CurrencyPair) Deactivate() {
	c.Active = false
	c.touch()
}

func (c *CurrencyPair) touch() {
	now := time.Now().UTC()
	c.UpdatedAt = &now
}

type CurrencyPairRepository interface {
	Create(pair *CurrencyPair) error
	GetByID(id int64) (*CurrencyPair, error)
	FindByPair(pair Pair) (*CurrencyPair, error)
	Update(pair *CurrencyPair) error
	Delete(id int64) error
	ListActive() ([]*CurrencyPair, error)
	ListAll() ([]*CurrencyPair, error)
}
