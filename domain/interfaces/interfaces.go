package interfaces

import (
	"time"

	"drawdown/domain/entities"
	"drawdown/domain/events"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock abstracts time so the scheduler and batch processor can be driven
// synchronously in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	AfterFunc(d time.Duration, f func()) Timer
}

// RollService computes single-trade outcomes.
type RollService interface {
	// Roll decides win/loss and, on a win, selects a payout multiplier.
	Roll(settings entities.Settings, streakAdjustmentActive bool) entities.RollResult
	// Change computes the signed balance delta for a trade at the given
	// risk percentage.
	Change(balance, riskPercent float64, won bool, multiplier int) float64
}

// StatsService folds a trade outcome into an agent's running statistics.
type StatsService interface {
	// ApplyTrade returns a new agent snapshot; the input is never mutated.
	ApplyTrade(agent *entities.Agent, change float64, won bool, multiplier int) *entities.Agent
}

// TerminationService decides when the simulation ends.
type TerminationService interface {
	Evaluate(player *entities.Agent, bots []*entities.Agent, settings entities.Settings, turnsPlayed int) (bool, entities.GameOverReason)
}

// SummaryService computes end-of-round rankings and derived statistics.
type SummaryService interface {
	Scoreboard(player *entities.Agent, bots []*entities.Agent, bankruptcyThreshold float64) []entities.ScoreboardEntry
	Summarize(sessionID string, reason entities.GameOverReason, turnsPlayed int, player *entities.Agent, bots []*entities.Agent, bankruptcyThreshold float64) entities.SessionSummary
}
