package domain

import "github.com/shopspring/decimal"

// EcoMerchant is a merchant whose card transactions earn seeds.
type EcoMerchant struct {
	BusinessNumber string
	Name           string
	Category       string
	Active         bool
}

// BenefitRate holds preferential percentage rates granted to a tier.
type BenefitRate struct {
	Savings decimal.Decimal
	Loan    decimal.Decimal
	Card    decimal.Decimal
}

// RewardPolicy configures how external events turn into seed rewards.
type RewardPolicy struct {
	MerchantRates map[Tier]decimal.Decimal
	BenefitRates  map[Tier]BenefitRate
	Tiers         TierPolicy
	ReceiptReward int64
}

// DefaultRewardPolicy returns the compiled-in policy.
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		ReceiptReward: 3,
		Tiers:         DefaultTierPolicy(),
		MerchantRates: map[Tier]decimal.Decimal{
			TierBeginner:     decimal.RequireFromString("0.005"),
			TierIntermediate: decimal.RequireFromString("0.01"),
			TierExpert:       decimal.RequireFromString("0.02"),
		},
		BenefitRates: map[Tier]BenefitRate{
			TierBeginner: {
				Savings: decimal.RequireFromString("0.5"),
				Loan:    decimal.RequireFromString("0.5"),
				Card:    decimal.RequireFromString("1.0"),
			},
			TierIntermediate: {
				Savings: decimal.RequireFromString("1.0"),
				Loan:    decimal.RequireFromString("1.0"),
				Card:    decimal.RequireFromString("3.0"),
			},
			TierExpert: {
				Savings: decimal.RequireFromString("2.0"),
				Loan:    decimal.RequireFromString("2.0"),
				Card:    decimal.RequireFromString("5.0"),
			},
		},
	}
}

// MerchantReward returns round(amount * rate(tier)). Unknown tiers fall
// back to the lowest band's rate.
func (p RewardPolicy) MerchantReward(amount int64, tier Tier) int64 {
	if amount <= 0 {
		return 0
	}
	rate, ok := p.MerchantRates[tier]
	if !ok && len(p.Tiers.Bands) > 0 {
		rate = p.MerchantRates[p.Tiers.Bands[0].Tier]
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

// BenefitRateFor returns the preferential rates for tier, falling back to
// the lowest band's rates.
func (p RewardPolicy) BenefitRateFor(tier Tier) BenefitRate {
	if rate, ok := p.BenefitRates[tier]; ok {
		return rate
	}
	if len(p.Tiers.Bands) > 0 {
		return p.BenefitRates[p.Tiers.Bands[0].Tier]
	}
	return BenefitRate{Savings: decimal.Zero, Loan: decimal.Zero, Card: decimal.Zero}
}
