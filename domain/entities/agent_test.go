package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAgent_InitialState(t *testing.T) {
	agent := NewAgent("player", 100)

	assert.Equal(t, "player", agent.ID)
	assert.Equal(t, 100.0, agent.Balance)
	assert.Equal(t, 100.0, agent.StartingBalance)
	assert.Equal(t, 100.0, agent.PeakBalance)
	assert.Equal(t, 100.0, agent.TroughBalance)
	assert.Equal(t, 1, agent.LastMultiplier)
	assert.Equal(t, 0, agent.Trades)

	// History is seeded with the starting balance at index 0
	assert.Len(t, agent.History, 1)
	assert.Equal(t, BalancePoint{Trade: 0, Balance: 100}, agent.History[0])
}

func TestAgent_IsBankrupt_StrictBoundary(t *testing.T) {
	agent := NewAgent("player", 100)

	agent.Balance = 49
	assert.True(t, agent.IsBankrupt(0.5))

	// Exactly at the threshold is not bankrupt
	agent.Balance = 50
	assert.False(t, agent.IsBankrupt(0.5))

	agent.Balance = 51
	assert.False(t, agent.IsBankrupt(0.5))
}

func TestAgent_Clone_NoSharedState(t *testing.T) {
	agent := NewAgent("player", 100)
	agent.BatchResults = NewBatchResults()
	agent.BatchResults.RecordWin(2, 10)

	clone := agent.Clone()
	clone.Balance = 42
	clone.History = append(clone.History, BalancePoint{Trade: 1, Balance: 42})
	clone.History[0].Balance = 7
	clone.BatchResults.RecordWin(3, 5)

	assert.Equal(t, 100.0, agent.Balance)
	assert.Len(t, agent.History, 1)
	assert.Equal(t, 100.0, agent.History[0].Balance)
	assert.Len(t, agent.BatchResults.Wins, 1)
	assert.Equal(t, 1, agent.BatchResults.Wins[2])
}

func TestAgent_WinPercentage(t *testing.T) {
	agent := NewAgent("player", 100)
	assert.Equal(t, 0.0, agent.WinPercentage())

	agent.Trades = 4
	agent.Wins = 3
	assert.Equal(t, 75.0, agent.WinPercentage())
}
