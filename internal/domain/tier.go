package domain

import (
	"errors"
	"time"
)

// Tier is a discrete reward level.
type Tier string

const (
	TierBeginner     Tier = "BEGINNER"
	TierIntermediate Tier = "INTERMEDIATE"
	TierExpert       Tier = "EXPERT"
)

var ErrInvalidTierPolicy = errors.New("invalid tier policy")

// TierBand is the half-open range [Floor, Ceiling) of lifetime earnings
// that maps to Tier. The top band has Ceiling 0 and is unbounded.
type TierBand struct {
	Tier    Tier
	Floor   int64
	Ceiling int64
}

// Unbounded reports whether the band has no ceiling.
func (b TierBand) Unbounded() bool {
	return b.Ceiling == 0
}

// TierPolicy partitions non-negative lifetime earnings into ordered bands.
type TierPolicy struct {
	Bands []TierBand
}

// DefaultTierPolicy returns the three-band policy used when no policy file is given.
func DefaultTierPolicy() TierPolicy {
	return TierPolicy{Bands: []TierBand{
		{Tier: TierBeginner, Floor: 0, Ceiling: 5000},
		{Tier: TierIntermediate, Floor: 5000, Ceiling: 10000},
		{Tier: TierExpert, Floor: 10000},
	}}
}

// Validate checks that bands start at zero, are contiguous and end unbounded.
func (p TierPolicy) Validate() error {
	if len(p.Bands) == 0 {
		return ErrInvalidTierPolicy
	}
	if p.Bands[0].Floor != 0 {
		return ErrInvalidTierPolicy
	}
	for i, b := range p.Bands {
		last := i == len(p.Bands)-1
		if b.Tier == "" {
			return ErrInvalidTierPolicy
		}
		if last != b.Unbounded() {
			return ErrInvalidTierPolicy
		}
		if !last && (b.Ceiling <= b.Floor || p.Bands[i+1].Floor != b.Ceiling) {
			return ErrInvalidTierPolicy
		}
	}
	return nil
}

// Rank returns the 1-based position of t, or 0 when t is unknown.
func (p TierPolicy) Rank(t Tier) int {
	for i, b := range p.Bands {
		if b.Tier == t {
			return i + 1
		}
	}
	return 0
}

// TierStatus is the evaluated position of an earnings total within a policy.
type TierStatus struct {
	Tier             Tier
	NextTier         Tier
	Level            int
	LifetimeEarned   int64
	BandFloor        int64
	BandCeiling      int64
	AmountToNextTier int64
	ProgressFraction float64
}

// Evaluate maps lifetimeEarned onto its band. Negative totals count as zero.
func (p TierPolicy) Evaluate(lifetimeEarned int64) TierStatus {
	if lifetimeEarned < 0 {
		lifetimeEarned = 0
	}

	idx := 0
	for i, b := range p.Bands {
		if lifetimeEarned >= b.Floor {
			idx = i
		}
	}
	band := p.Bands[idx]

	status := TierStatus{
		Tier:           band.Tier,
		Level:          idx + 1,
		LifetimeEarned: lifetimeEarned,
		BandFloor:      band.Floor,
		BandCeiling:    band.Ceiling,
	}

	if band.Unbounded() {
		status.ProgressFraction = 1.0
		return status
	}

	status.NextTier = p.Bands[idx+1].Tier
	status.AmountToNextTier = max(0, band.Ceiling-lifetimeEarned)
	progress := float64(lifetimeEarned-band.Floor) / float64(band.Ceiling-band.Floor)
	status.ProgressFraction = min(1.0, max(0.0, progress))
	return status
}

// Profile caches a customer's tier alongside the total it was derived from.
type Profile struct {
	UpdatedAt        time.Time
	OwnerID          string
	Tier             Tier
	LifetimeEarned   int64
	AmountToNextTier int64
	ProgressFraction float64
}

// ApplyStatus copies an evaluated status onto the profile.
func (p *Profile) ApplyStatus(status TierStatus, at time.Time) {
	p.Tier = status.Tier
	p.LifetimeEarned = status.LifetimeEarned
	p.AmountToNextTier = status.AmountToNextTier
	p.ProgressFraction = status.ProgressFraction
	p.UpdatedAt = at
}
