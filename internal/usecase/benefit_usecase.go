package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/greenledger/internal/domain"
)

// Products reported by sibling services in account summaries.
const (
	ProductSavings   = "SAVINGS"
	ProductLoan      = "LOAN"
	ProductCardUsage = "CARD_USAGE"
)

// SummarizeAccount describes a local account the way sibling services
// report theirs. Deposit accounts count as savings.
func SummarizeAccount(service string, a *domain.Account) AccountSummary {
	summary := AccountSummary{
		Service:   service,
		AccountID: a.ID,
		Domain:    a.Domain,
		Status:    string(a.Status),
		Balance:   a.Balance,
	}
	if a.Domain == domain.LedgerDomainDeposit {
		summary.Product = ProductSavings
	}
	return summary
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// BenefitUseCase computes tier-based preferential rates from what sibling
// services report. It reads the tier through the gateway and never touches
// the local ledger.
type BenefitUseCase struct {
	gateway Gateway
	cache   Cache
	policy  domain.RewardPolicy
	logger  zerolog.Logger
}

// NewBenefitUseCase creates a new BenefitUseCase. cache may be nil.
func NewBenefitUseCase(gateway Gateway, cache Cache, policy domain.RewardPolicy, logger zerolog.Logger) *BenefitUseCase {
	return &BenefitUseCase{
		gateway: gateway,
		cache:   cache,
		policy:  policy,
		logger:  logger.With().Str("component", "benefit").Logger(),
	}
}

// Benefit is a customer's monthly preferential benefit estimate.
type Benefit struct {
	Rates            domain.BenefitRate
	Tier             domain.Tier
	SavingsBalance   int64
	LoanBalance      int64
	MonthlyCardUsage int64
	SavingsInterest  int64
	LoanBenefit      int64
	CardDiscount     int64
	Total            int64
}

// Calculate looks up the customer's tier and balances and applies the
// tier's preferential rates. Gateway failures surface as
// domain.ErrBackendUnavailable.
func (uc *BenefitUseCase) Calculate(ctx context.Context, token string) (*Benefit, error) {
	snapshot, err := uc.gateway.QueryTier(ctx, token)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accounts(ctx, token)
	if err != nil {
		return nil, err
	}

	benefit := &Benefit{
		Tier:  snapshot.Tier,
		Rates: uc.policy.BenefitRateFor(snapshot.Tier),
	}
	for _, a := range accounts {
		switch a.Product {
		case ProductSavings:
			benefit.SavingsBalance += a.Balance
		case ProductLoan:
			benefit.LoanBalance += a.Balance
		case ProductCardUsage:
			benefit.MonthlyCardUsage += a.Balance
		}
	}

	benefit.SavingsInterest = monthlyInterest(benefit.SavingsBalance, benefit.Rates.Savings)
	benefit.LoanBenefit = monthlyInterest(benefit.LoanBalance, benefit.Rates.Loan)
	benefit.CardDiscount = decimal.NewFromInt(benefit.MonthlyCardUsage).
		Mul(benefit.Rates.Card).
		Div(hundred).
		IntPart()
	benefit.Total = benefit.SavingsInterest + benefit.LoanBenefit + benefit.CardDiscount

	return benefit, nil
}

// monthlyInterest is balance * percent / 100 / 12, truncated.
func monthlyInterest(balance int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(balance).Mul(percent).Div(hundred).Div(twelve).IntPart()
}

func (uc *BenefitUseCase) accounts(ctx context.Context, token string) ([]AccountSummary, error) {
	key := accountSummaryKey(token)

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil {
			var cached []AccountSummary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	accounts, err := uc.gateway.QueryAccounts(ctx, token)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		data, err := json.Marshal(accounts)
		if err == nil {
			err = uc.cache.Set(ctx, key, data, AccountSummaryTTL)
		}
		if err != nil {
			uc.logger.Debug().Err(err).Msg("could not cache account summaries")
		}
	}

	return accounts, nil
}

// accountSummaryKey keeps raw tokens out of the cache keyspace.
func accountSummaryKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("benefit:accounts:%s", hex.EncodeToString(sum[:]))
}
