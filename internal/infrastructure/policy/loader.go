// Package policy loads the reward policy from a TOML file. Anything the
// file leaves out keeps its compiled-in default.
package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/iho/greenledger/internal/domain"
)

var ErrInvalidPolicy = errors.New("invalid policy file")

type file struct {
	ReceiptReward *int64                 `toml:"receipt_reward"`
	Tiers         []tierBand             `toml:"tiers"`
	MerchantRates map[string]string      `toml:"merchant_rates"`
	BenefitRates  map[string]benefitRate `toml:"benefit_rates"`
}

type tierBand struct {
	Name    string `toml:"name"`
	Floor   int64  `toml:"floor"`
	Ceiling int64  `toml:"ceiling"`
}

type benefitRate struct {
	Savings string `toml:"savings"`
	Loan    string `toml:"loan"`
	Card    string `toml:"card"`
}

// Load reads the policy at path. An empty path yields the default policy.
func Load(path string) (domain.RewardPolicy, error) {
	if path == "" {
		return domain.DefaultRewardPolicy(), nil
	}

	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return domain.RewardPolicy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return domain.RewardPolicy{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidPolicy, strings.Join(keys, ", "))
	}

	return f.apply(domain.DefaultRewardPolicy())
}

// Decode parses policy TOML held in memory.
func Decode(data string) (domain.RewardPolicy, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return domain.RewardPolicy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return f.apply(domain.DefaultRewardPolicy())
}

func (f file) apply(p domain.RewardPolicy) (domain.RewardPolicy, error) {
	if f.ReceiptReward != nil {
		if *f.ReceiptReward <= 0 {
			return p, fmt.Errorf("%w: receipt_reward must be positive", ErrInvalidPolicy)
		}
		p.ReceiptReward = *f.ReceiptReward
	}

	if len(f.Tiers) > 0 {
		bands := make([]domain.TierBand, len(f.Tiers))
		for i, t := range f.Tiers {
			bands[i] = domain.TierBand{Tier: domain.Tier(strings.ToUpper(t.Name)), Floor: t.Floor, Ceiling: t.Ceiling}
		}
		sort.Slice(bands, func(i, j int) bool { return bands[i].Floor < bands[j].Floor })
		p.Tiers = domain.TierPolicy{Bands: bands}
	}
	if err := p.Tiers.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	if len(f.MerchantRates) > 0 {
		rates := make(map[domain.Tier]decimal.Decimal, len(f.MerchantRates))
		for name, raw := range f.MerchantRates {
			rate, err := parseRate(raw)
			if err != nil {
				return p, fmt.Errorf("%w: merchant_rates.%s: %v", ErrInvalidPolicy, name, err)
			}
			rates[domain.Tier(strings.ToUpper(name))] = rate
		}
		p.MerchantRates = rates
	}

	if len(f.BenefitRates) > 0 {
		rates := make(map[domain.Tier]domain.BenefitRate, len(f.BenefitRates))
		for name, raw := range f.BenefitRates {
			rate, err := raw.parse()
			if err != nil {
				return p, fmt.Errorf("%w: benefit_rates.%s: %v", ErrInvalidPolicy, name, err)
			}
			rates[domain.Tier(strings.ToUpper(name))] = rate
		}
		p.BenefitRates = rates
	}

	for _, band := range p.Tiers.Bands {
		if _, ok := p.MerchantRates[band.Tier]; !ok {
			return p, fmt.Errorf("%w: no merchant rate for tier %s", ErrInvalidPolicy, band.Tier)
		}
		if _, ok := p.BenefitRates[band.Tier]; !ok {
			return p, fmt.Errorf("%w: no benefit rates for tier %s", ErrInvalidPolicy, band.Tier)
		}
	}

	return p, nil
}

func (b benefitRate) parse() (domain.BenefitRate, error) {
	savings, err := parseRate(b.Savings)
	if err != nil {
		return domain.BenefitRate{}, fmt.Errorf("savings: %w", err)
	}
	loan, err := parseRate(b.Loan)
	if err != nil {
		return domain.BenefitRate{}, fmt.Errorf("loan: %w", err)
	}
	card, err := parseRate(b.Card)
	if err != nil {
		return domain.BenefitRate{}, fmt.Errorf("card: %w", err)
	}
	return domain.BenefitRate{Savings: savings, Loan: loan, Card: card}, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, errors.New("rate must not be negative")
	}
	return rate, nil
}
