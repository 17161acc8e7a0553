package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/greenledger/internal/domain"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ReceiptReward)
	assert.Len(t, p.Tiers.Bands, 3)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
receipt_reward = 5

[[tiers]]
name = "intermediate"
floor = 1000
ceiling = 4000

[[tiers]]
name = "beginner"
floor = 0
ceiling = 1000

[[tiers]]
name = "expert"
floor = 4000

[merchant_rates]
BEGINNER = "0.01"
INTERMEDIATE = "0.02"
EXPERT = "0.03"
`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(5), p.ReceiptReward)
	require.Len(t, p.Tiers.Bands, 3)
	assert.Equal(t, domain.TierBeginner, p.Tiers.Bands[0].Tier)
	assert.Equal(t, domain.TierExpert, p.Tiers.Evaluate(4000).Tier)
	assert.True(t, decimal.RequireFromString("0.02").Equal(p.MerchantRates[domain.TierIntermediate]))

	// Benefit rates were not in the file and keep their defaults.
	assert.True(t, decimal.RequireFromString("5.0").Equal(p.BenefitRateFor(domain.TierExpert).Card))
}

func TestDecodeRejectsInvalidPolicies(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "negative receipt reward", data: `receipt_reward = -1`},
		{name: "gap between bands", data: `
[[tiers]]
name = "BEGINNER"
floor = 0
ceiling = 100
[[tiers]]
name = "EXPERT"
floor = 200
`},
		{name: "malformed rate", data: `
[merchant_rates]
BEGINNER = "abc"
INTERMEDIATE = "0.01"
EXPERT = "0.02"
`},
		{name: "negative benefit rate", data: `
[benefit_rates.BEGINNER]
savings = "-1"
loan = "0.5"
card = "1"
`},
		{name: "tier without merchant rate", data: `
[merchant_rates]
BEGINNER = "0.01"
`},
		{name: "not toml", data: `receipt_reward = = 3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.True(t, errors.Is(err, ErrInvalidPolicy), "got %v", err)
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	require.NoError(t, os.WriteFile(path, []byte("reciept_reward = 3\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}
