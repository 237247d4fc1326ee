package services

import "drawdown/domain/entities"

// StreakAdjustmentState is the policy's verdict after a player turn.
type StreakAdjustmentState struct {
	Active    bool
	Remaining int
}

// EvaluateStreakAdjustment decides the streak-adjustment state after a
// player turn. It returns nil when nothing changes.
//
// An active adjustment ticks down one trade per turn and deactivates at
// zero. An inactive one activates for the configured duration once the
// player's streak magnitude reaches the configured threshold.
func EvaluateStreakAdjustment(state *entities.GameState, settings entities.Settings, playerStreak int) *StreakAdjustmentState {
	if state.StreakAdjustmentActive {
		if state.StreakAdjustmentRemaining <= 1 {
			return &StreakAdjustmentState{Active: false, Remaining: 0}
		}
		return &StreakAdjustmentState{Active: true, Remaining: state.StreakAdjustmentRemaining - 1}
	}

	if settings.StreakAdjustment.Enabled && abs(playerStreak) >= settings.StreakAdjustment.RequiredStreak {
		return &StreakAdjustmentState{Active: true, Remaining: settings.StreakAdjustment.Duration}
	}

	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
