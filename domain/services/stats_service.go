package services

import (
	"math"

	"drawdown/domain/entities"
	"drawdown/domain/events"
	"drawdown/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// BankruptcyCueRatio is the balance-to-starting-balance ratio below which
// the BankruptcyReached event fires. This is deliberately distinct from
// the gameplay bankruptcy threshold (Settings.BankruptcyThreshold): the
// cue marks an effectively empty account, the threshold eliminates the
// agent from play.
const BankruptcyCueRatio = 0.001

type statsService struct {
	eventPublisher interfaces.EventPublisher
}

// NewStatsService creates the stats accumulator. The publisher receives
// bankruptcy-cue and streak-record signals; pass a no-op publisher to
// run silent.
func NewStatsService(eventPublisher interfaces.EventPublisher) interfaces.StatsService {
	return &statsService{eventPublisher: eventPublisher}
}

// ApplyTrade folds one trade outcome into the agent's statistics and
// returns a fresh snapshot. The balance clamps at zero; the streak sign
// always matches the latest outcome's direction.
func (s *statsService) ApplyTrade(agent *entities.Agent, change float64, won bool, multiplier int) *entities.Agent {
	next := agent.Clone()

	next.Balance = math.Max(0, agent.Balance+change)
	next.Streak = nextStreak(agent.Streak, won)
	next.Trades = agent.Trades + 1
	next.LastChange = change
	next.LastMultiplier = multiplier
	next.PeakBalance = math.Max(agent.PeakBalance, next.Balance)
	next.TroughBalance = math.Min(agent.TroughBalance, next.Balance)

	if won {
		next.Wins = agent.Wins + 1
		next.TotalWinnings = agent.TotalWinnings + change
		next.BestWinStreak = max(agent.BestWinStreak, next.Streak)
		// Incremental mean over wins only.
		next.AvgGain = (agent.AvgGain*float64(agent.Wins) + change) / float64(agent.Wins+1)
	} else {
		next.Losses = agent.Losses + 1
		next.TotalLosses = agent.TotalLosses + math.Abs(change)
		next.WorstLossStreak = max(agent.WorstLossStreak, -next.Streak)
		next.AvgLoss = (agent.AvgLoss*float64(agent.Losses) + math.Abs(change)) / float64(agent.Losses+1)
	}

	next.History = append(next.History, entities.BalancePoint{Trade: next.Trades, Balance: next.Balance})

	s.publishSignals(agent, next, won)

	return next
}

func (s *statsService) publishSignals(prev, next *entities.Agent, won bool) {
	if err := s.eventPublisher.Publish(events.BalanceChangeEvent{
		AgentID:    next.ID,
		OldBalance: prev.Balance,
		NewBalance: next.Balance,
		Change:     next.LastChange,
		Won:        won,
		Multiplier: next.LastMultiplier,
	}); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	if next.BalanceRatio() < BankruptcyCueRatio {
		if err := s.eventPublisher.Publish(events.BankruptcyReachedEvent{AgentID: next.ID}); err != nil {
			log.WithError(err).Error("Failed to publish bankruptcy reached event")
		}
		return
	}

	if won && next.BestWinStreak > prev.BestWinStreak {
		s.publishStreakRecord(next.ID, events.StreakDirectionWin, next.BestWinStreak)
	} else if !won && next.WorstLossStreak > prev.WorstLossStreak {
		s.publishStreakRecord(next.ID, events.StreakDirectionLoss, next.WorstLossStreak)
	}
}

func (s *statsService) publishStreakRecord(agentID string, direction events.StreakDirection, length int) {
	if err := s.eventPublisher.Publish(events.StreakRecordEvent{
		AgentID:   agentID,
		Direction: direction,
		Length:    length,
	}); err != nil {
		log.WithError(err).Error("Failed to publish streak record event")
	}
}

// nextStreak continues a same-direction streak or resets to magnitude 1
// in the new direction.
func nextStreak(current int, won bool) int {
	if won {
		if current >= 0 {
			return current + 1
		}
		return 1
	}
	if current <= 0 {
		return current - 1
	}
	return -1
}
