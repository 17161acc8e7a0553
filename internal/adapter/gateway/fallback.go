package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
)

// Fallback asks gateways in order and returns the first answer.
type Fallback struct {
	gateways []usecase.Gateway
	logger   zerolog.Logger
}

// NewFallback creates a Fallback over gateways, tried in the given order.
func NewFallback(logger zerolog.Logger, gateways ...usecase.Gateway) *Fallback {
	return &Fallback{
		gateways: gateways,
		logger:   logger.With().Str("component", "gateway_fallback").Logger(),
	}
}

// QueryTier returns the first tier snapshot any gateway produces.
func (f *Fallback) QueryTier(ctx context.Context, token string) (*usecase.TierSnapshot, error) {
	return first(ctx, f, func(g usecase.Gateway) (*usecase.TierSnapshot, error) {
		return g.QueryTier(ctx, token)
	})
}

// QueryAccounts returns the first account list any gateway produces.
func (f *Fallback) QueryAccounts(ctx context.Context, token string) ([]usecase.AccountSummary, error) {
	return first(ctx, f, func(g usecase.Gateway) ([]usecase.AccountSummary, error) {
		return g.QueryAccounts(ctx, token)
	})
}

// first tries every gateway until one answers. When none does, a definite
// rejection wins over unavailability so callers do not retry a request that
// cannot succeed.
func first[T any](ctx context.Context, f *Fallback, call func(usecase.Gateway) (T, error)) (T, error) {
	var (
		zero        T
		rejection   error
		unreachable []error
	)

	for i, g := range f.gateways {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}

		res, err := call(g)
		if err == nil {
			return res, nil
		}

		f.logger.Debug().Err(err).Int("gateway", i).Msg("gateway did not answer, trying next")
		switch domain.ClassOf(err) {
		case domain.ClassValidation, domain.ClassPrecondition:
			if rejection == nil {
				rejection = err
			}
		default:
			unreachable = append(unreachable, err)
		}
	}

	if rejection != nil {
		return zero, rejection
	}
	if len(unreachable) == 0 {
		return zero, fmt.Errorf("%w: no gateway configured", domain.ErrBackendUnavailable)
	}
	return zero, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, errors.Join(unreachable...))
}
