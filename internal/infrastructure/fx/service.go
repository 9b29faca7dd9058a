package fx

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/infrastructure/config"
)

// Service refreshes rates from the provider and answers conversion
// queries from the cached quote.
type Service struct {
	provider RateProvider
	store    RateStore
	base     string
	enabled  bool
	logger   *zap.Logger
}

// NewService creates an FX service.
func NewService(cfg config.FXConfig, provider RateProvider, store RateStore, logger *zap.Logger) *Service {
	base := strings.ToUpper(cfg.BaseCurrency)
	if base == "" {
		base = "USD"
	}
	return &Service{
		provider: provider,
		store:    store,
		base:     base,
		enabled:  cfg.Enabled,
		logger:   logger,
	}
}

// Refresh fetches the latest rates and caches them. Wired to the daily
// rate-refresh job and the admin update-rates command.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info("Exchange rates disabled by configuration")
		return nil
	}

	quote, err := s.provider.FetchLatest(ctx, s.base)
	if err != nil {
		return err
	}

	if err := s.store.SaveQuote(ctx, quote); err != nil {
		return err
	}

	s.logger.Info("Exchange rates refreshed",
		zap.String("base", quote.Base),
		zap.Int("currencies", len(quote.Rates)),
	)
	return nil
}

// Rate returns the multiplier converting one unit of from into to.
func (s *Service) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	quote, err := s.store.LoadQuote(ctx, s.base)
	if err != nil {
		return decimal.Zero, err
	}

	fromRate, err := s.rateAgainstBase(quote, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := s.rateAgainstBase(quote, to)
	if err != nil {
		return decimal.Zero, err
	}

	// Cross rate through the base currency
	return toRate.Div(fromRate), nil
}

// Convert converts an amount between currencies using cached rates.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

func (s *Service) rateAgainstBase(quote *RateQuote, currency string) (decimal.Decimal, error) {
	if currency == quote.Base {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := quote.Rates[currency]
	if !ok || rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRateNotFound, currency)
	}
	return rate, nil
}
