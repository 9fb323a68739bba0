package domain

import (
	"fmt"
	"strings"
)

var supportedCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY", "RUB", "INR",
	"BRL", "MXN", "KRW", "SGD", "HKD", "NZD", "SEK", "NOK", "DKK", "PLN",
}

var supportedCurrencySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(supportedCurrencies))
	for _, code := range supportedCurrencies {
		set[code] = struct{}{}
	}
	return set
}()

// Currency is a validated ISO-like currency code from the supported set.
// The zero value is not a valid currency.
type Currency struct {
	code string
}

func NewCurrency(code string) (Currency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Currency{}, fmt.Errorf("%w: currency code is empty", ErrValidation)
	}
	if _, ok := supportedCurrencySet[normalized]; !ok {
		return Currency{}, fmt.Errorf("%w: unsupported currency %q, supported: %s",
			ErrValidation, code, strings.Join(supportedCurrencies, ", "))
	}
	return Currency{code: normalized}, nil
}

// MustCurrency panics on an invalid code. Use it for compile-time constants only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string {
	return c.code
}

func (c Currency) String() string {
	return c.code
}

func (c Currency) Equals(other Currency) bool {
	return c.code == other.code
}

func (c Currency) IsZero() bool {
	return c.code == ""
}

// SupportedCurrencies returns a copy of the closed set of currency codes.
func SupportedCurrencies() []string {
	out := make([]string, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}
