package services

import (
	"math/rand"
	"sort"
	"time"

	"drawdown/domain/entities"
	"drawdown/domain/interfaces"
)

// Bounds for the streak-adjusted win probability, in percent.
const (
	minAdjustedProbability = 1
	maxAdjustedProbability = 99
)

type rollService struct {
	rng *rand.Rand
}

// NewRollService creates a roll service. A nil rng gets a time-seeded
// source; tests pass a seeded one for deterministic rolls.
func NewRollService(rng *rand.Rand) interfaces.RollService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &rollService{rng: rng}
}

// EffectiveWinProbability returns the win probability a roll will use:
// the base probability, shifted by the streak adjustment when active and
// clamped to [1, 99]. The base probability is used unclamped when no
// adjustment applies, so 0 and 100 stay exact.
func EffectiveWinProbability(settings entities.Settings, streakAdjustmentActive bool) float64 {
	if !streakAdjustmentActive || !settings.StreakAdjustment.Enabled {
		return settings.WinProbability
	}
	p := settings.WinProbability + float64(settings.StreakAdjustment.Adjustment)
	if p < minAdjustedProbability {
		return minAdjustedProbability
	}
	if p > maxAdjustedProbability {
		return maxAdjustedProbability
	}
	return p
}

func (s *rollService) Roll(settings entities.Settings, streakAdjustmentActive bool) entities.RollResult {
	// With no enabled multipliers every roll is a non-win placeholder.
	if len(settings.EnabledMultipliers) == 0 {
		return entities.RollResult{Won: false, Multiplier: 1}
	}

	winProbability := EffectiveWinProbability(settings, streakAdjustmentActive)

	won := s.rng.Float64()*100 < winProbability
	if !won {
		return entities.RollResult{Won: false, Multiplier: 1}
	}

	// Walk the enabled multipliers in ascending order, accumulating their
	// weights until the draw falls inside one. Weights summing under 100
	// leave a gap that defaults to multiplier 1.
	multipliers := make([]int, len(settings.EnabledMultipliers))
	copy(multipliers, settings.EnabledMultipliers)
	sort.Ints(multipliers)

	roll := s.rng.Float64() * 100
	sum := 0.0
	for _, multiplier := range multipliers {
		sum += settings.Multipliers[multiplier]
		if roll < sum {
			return entities.RollResult{Won: true, Multiplier: multiplier}
		}
	}

	return entities.RollResult{Won: true, Multiplier: 1}
}

func (s *rollService) Change(balance, riskPercent float64, won bool, multiplier int) float64 {
	stake := balance * riskPercent / 100
	if won {
		return stake * float64(multiplier)
	}
	return -stake
}
