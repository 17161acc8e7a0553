package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/greenledger/internal/domain"
	"github.com/iho/greenledger/internal/usecase"
	"github.com/iho/greenledger/internal/usecase/mocks"
)

func TestBenefitUseCase_Calculate(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	cache := mocks.NewMockCache(ctrl)

	gateway.EXPECT().QueryTier(gomock.Any(), "dG9rZW4=").Return(&usecase.TierSnapshot{Tier: domain.TierExpert}, nil)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("miss"))
	gateway.EXPECT().QueryAccounts(gomock.Any(), "dG9rZW4=").Return([]usecase.AccountSummary{
		{Service: "deposit", Product: usecase.ProductSavings, Balance: 1_200_000},
		{Service: "loan", Product: usecase.ProductLoan, Balance: 600_000},
		{Service: "card", Product: usecase.ProductCardUsage, Balance: 100_000},
		{Service: "deposit", Product: "CHECKING", Balance: 999_999},
	}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), usecase.AccountSummaryTTL).Return(nil)

	uc := usecase.NewBenefitUseCase(gateway, cache, domain.DefaultRewardPolicy(), zerolog.Nop())
	benefit, err := uc.Calculate(context.Background(), "dG9rZW4=")
	require.NoError(t, err)

	assert.Equal(t, domain.TierExpert, benefit.Tier)
	assert.Equal(t, int64(1_200_000), benefit.SavingsBalance)
	assert.Equal(t, int64(2000), benefit.SavingsInterest)
	assert.Equal(t, int64(1000), benefit.LoanBenefit)
	assert.Equal(t, int64(5000), benefit.CardDiscount)
	assert.Equal(t, int64(8000), benefit.Total)
}

func TestBenefitUseCase_UsesCachedAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cached, err := json.Marshal([]usecase.AccountSummary{{Product: usecase.ProductSavings, Balance: 120_000}})
	require.NoError(t, err)

	gateway.EXPECT().QueryTier(gomock.Any(), gomock.Any()).Return(&usecase.TierSnapshot{Tier: domain.TierBeginner}, nil)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cached, nil)

	uc := usecase.NewBenefitUseCase(gateway, cache, domain.DefaultRewardPolicy(), zerolog.Nop())
	benefit, err := uc.Calculate(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, int64(50), benefit.SavingsInterest)
	assert.Equal(t, benefit.SavingsInterest, benefit.Total)
}

func TestBenefitUseCase_GatewayUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)

	gateway.EXPECT().QueryTier(gomock.Any(), gomock.Any()).Return(nil, domain.ErrBackendUnavailable)

	uc := usecase.NewBenefitUseCase(gateway, nil, domain.DefaultRewardPolicy(), zerolog.Nop())
	_, err := uc.Calculate(context.Background(), "token")
	require.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.True(t, domain.ClassOf(err).Retryable())
}
