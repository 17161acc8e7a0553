package domain

import (
	"errors"
	"math"
	"testing"
)

func TestTierPolicy_Evaluate(t *testing.T) {
	policy := DefaultTierPolicy()

	tests := []struct {
		name     string
		earned   int64
		tier     Tier
		level    int
		progress float64
		toNext   int64
	}{
		{"zero", 0, TierBeginner, 1, 0, 5000},
		{"negative counts as zero", -10, TierBeginner, 1, 0, 5000},
		{"mid first band", 2500, TierBeginner, 1, 0.5, 2500},
		{"just below boundary", 4999, TierBeginner, 1, 0.9998, 1},
		{"exactly at boundary", 5000, TierIntermediate, 2, 0, 5000},
		{"just past boundary", 5001, TierIntermediate, 2, 0.0002, 4999},
		{"top band floor", 10000, TierExpert, 3, 1, 0},
		{"deep in top band", 250000, TierExpert, 3, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Evaluate(tt.earned)
			if got.Tier != tt.tier || got.Level != tt.level {
				t.Fatalf("expected %s (level %d), got %s (level %d)", tt.tier, tt.level, got.Tier, got.Level)
			}
			if math.Abs(got.ProgressFraction-tt.progress) > 1e-9 {
				t.Fatalf("expected progress %v, got %v", tt.progress, got.ProgressFraction)
			}
			if got.AmountToNextTier != tt.toNext {
				t.Fatalf("expected amount to next %d, got %d", tt.toNext, got.AmountToNextTier)
			}
		})
	}
}

func TestTierPolicy_BoundaryCrossingResetsProgress(t *testing.T) {
	policy := DefaultTierPolicy()

	before := policy.Evaluate(4999)
	after := policy.Evaluate(5001)

	if before.Level != 1 || after.Level != 2 {
		t.Fatalf("expected band 1 -> 2, got %d -> %d", before.Level, after.Level)
	}
	if after.BandFloor != 5000 {
		t.Fatalf("expected new band floor 5000, got %d", after.BandFloor)
	}
	if after.ProgressFraction >= before.ProgressFraction {
		t.Fatalf("progress should restart from the new floor: before=%v after=%v", before.ProgressFraction, after.ProgressFraction)
	}
}

func TestTierPolicy_Monotonic(t *testing.T) {
	policy := DefaultTierPolicy()

	prev := 0
	for earned := int64(0); earned <= 20000; earned += 37 {
		level := policy.Evaluate(earned).Level
		if level < prev {
			t.Fatalf("tier decreased at %d: %d -> %d", earned, prev, level)
		}
		prev = level
	}
}

func TestTierPolicy_Validate(t *testing.T) {
	if err := DefaultTierPolicy().Validate(); err != nil {
		t.Fatalf("default policy must be valid: %v", err)
	}

	invalid := []TierPolicy{
		{},
		{Bands: []TierBand{{Tier: TierBeginner, Floor: 10}}},
		{Bands: []TierBand{{Tier: TierBeginner, Floor: 0, Ceiling: 100}}},
		{Bands: []TierBand{
			{Tier: TierBeginner, Floor: 0, Ceiling: 100},
			{Tier: TierExpert, Floor: 200},
		}},
		{Bands: []TierBand{
			{Tier: TierBeginner, Floor: 0},
			{Tier: TierExpert, Floor: 200},
		}},
	}

	for i, p := range invalid {
		if err := p.Validate(); !errors.Is(err, ErrInvalidTierPolicy) {
			t.Fatalf("policy %d: expected ErrInvalidTierPolicy, got %v", i, err)
		}
	}
}

func TestTierPolicy_Rank(t *testing.T) {
	policy := DefaultTierPolicy()
	if policy.Rank(TierExpert) != 3 || policy.Rank(TierBeginner) != 1 {
		t.Fatalf("unexpected ranks")
	}
	if policy.Rank("PLATINUM") != 0 {
		t.Fatalf("unknown tier should rank 0")
	}
}
