package services

import (
	"drawdown/domain/entities"
	"drawdown/domain/interfaces"
)

type terminationService struct{}

// NewTerminationService creates the game termination policy.
func NewTerminationService() interfaces.TerminationService {
	return &terminationService{}
}

// Evaluate reports whether the simulation has reached a terminal state
// and why. The player going bankrupt outranks all bots going bankrupt,
// which outranks the turn limit.
func (s *terminationService) Evaluate(player *entities.Agent, bots []*entities.Agent, settings entities.Settings, turnsPlayed int) (bool, entities.GameOverReason) {
	threshold := settings.BankruptcyThreshold

	if player.IsBankrupt(threshold) {
		return true, entities.GameOverPlayerBankrupt
	}

	allBotsBankrupt := len(bots) > 0
	for _, bot := range bots {
		if !bot.IsBankrupt(threshold) {
			allBotsBankrupt = false
			break
		}
	}
	if allBotsBankrupt {
		return true, entities.GameOverBotsBankrupt
	}

	if settings.MaxTurns > 0 && turnsPlayed >= settings.MaxTurns {
		return true, entities.GameOverTurnLimit
	}

	return false, ""
}
