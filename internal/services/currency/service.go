// Package currency converts donation amounts between currencies using a
// cached snapshot of exchange rates that share a single base.
package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrRateUnavailable = errors.New("exchange rate unavailable")

type RateSource interface {
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

type RateCache interface {
	Rate(ctx context.Context, iso string) (decimal.Decimal, bool, error)
	StoreRates(ctx context.Context, rates map[string]decimal.Decimal) error
}

type Service struct {
	source RateSource
	cache  RateCache
	logger *zap.Logger
}

type Dependencies struct {
	Source RateSource
	Cache  RateCache
	Logger *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: deps.Source,
		cache:  deps.Cache,
		logger: logger,
	}
}

// Convert returns amount expressed in the target currency, rounded to
// whole units. All rates share one base, so the conversion is
// amount / rate(from) * rate(to).
func (s *Service) Convert(ctx context.Context, amount int64, fromISO, toISO string) (int64, error) {
	fromISO = strings.ToUpper(strings.TrimSpace(fromISO))
	toISO = strings.ToUpper(strings.TrimSpace(toISO))
	if fromISO == "" || toISO == "" {
		return 0, fmt.Errorf("currency iso is required")
	}
	if fromISO == toISO {
		return amount, nil
	}

	fromRate, err := s.rate(ctx, fromISO)
	if err != nil {
		return 0, err
	}
	toRate, err := s.rate(ctx, toISO)
	if err != nil {
		return 0, err
	}
	if fromRate.IsZero() {
		return 0, fmt.Errorf("%w: zero rate for %s", ErrRateUnavailable, fromISO)
	}

	converted := decimal.NewFromInt(amount).Div(fromRate).Mul(toRate)
	return converted.Round(0).IntPart(), nil
}

func (s *Service) rate(ctx context.Context, iso string) (decimal.Decimal, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Rate(ctx, iso)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("read rate cache: %w", err)
		}
		if ok {
			return cached, nil
		}
	}

	if s.source == nil {
		return decimal.Decimal{}, fmt.Errorf("rate source is not configured")
	}

	rates, err := s.source.FetchRates(ctx)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch exchange rates: %w", err)
	}
	s.logger.Info("fetched exchange rates", zap.Int("count", len(rates)))

	if s.cache != nil {
		if err := s.cache.StoreRates(ctx, rates); err != nil {
			return decimal.Decimal{}, fmt.Errorf("store rate cache: %w", err)
		}
	}

	rate, ok := rates[iso]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrRateUnavailable, iso)
	}

	return rate, nil
}
