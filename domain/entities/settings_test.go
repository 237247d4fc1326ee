package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeBatchSize_Clamping(t *testing.T) {
	assert.Equal(t, MinBatchSize, SafeBatchSize(0))
	assert.Equal(t, MinBatchSize, SafeBatchSize(3))
	assert.Equal(t, 10, SafeBatchSize(10))
	assert.Equal(t, MaxBatchSize, SafeBatchSize(5000))
}

func TestSafeAutoPlaySpeed_Clamping(t *testing.T) {
	assert.Equal(t, MinAutoPlaySpeed, SafeAutoPlaySpeed(0))
	assert.Equal(t, 100*time.Millisecond, SafeAutoPlaySpeed(100*time.Millisecond))
	assert.Equal(t, MaxAutoPlaySpeed, SafeAutoPlaySpeed(time.Minute))
}

func TestSettings_Normalize_FillsAndClamps(t *testing.T) {
	s := Settings{
		BotCount: -1,
		MaxTurns: -5,
		BatchRoll: BatchConfig{
			Size:          200,
			AutoPlaySpeed: time.Hour,
		},
		EnabledMultipliers: []int{2, 7},
		Multipliers:        map[int]float64{2: 10},
	}
	s.Normalize()

	def := DefaultSettings()
	assert.Equal(t, def.StartingBalance, s.StartingBalance)
	assert.Equal(t, def.BankruptcyThreshold, s.BankruptcyThreshold)
	assert.Equal(t, 0, s.BotCount)
	assert.Equal(t, 0, s.MaxTurns)
	assert.Equal(t, MaxBatchSize, s.BatchRoll.Size)
	assert.Equal(t, MaxAutoPlaySpeed, s.BatchRoll.AutoPlaySpeed)
	assert.Equal(t, def.BatchRoll.ChunkSize, s.BatchRoll.ChunkSize)

	// Enabled multipliers missing from the weight map degrade to weight 0
	assert.Equal(t, 0.0, s.Multipliers[7])
}

func TestSettings_BotRisks_Ladder(t *testing.T) {
	s := DefaultSettings()
	s.BotCount = 10
	risks := s.BotRisks()

	assert.Len(t, risks, 10)
	assert.Equal(t, 5.0, risks[0])
	assert.Equal(t, 50.0, risks[7])
	// Past the ladder's end the last value repeats
	assert.Equal(t, 50.0, risks[8])
	assert.Equal(t, 50.0, risks[9])

	s.BotCount = 2
	assert.Equal(t, []float64{5, 10}, s.BotRisks())
}

func TestGameState_Selectors(t *testing.T) {
	state := NewGameState()
	assert.True(t, state.CanPlay())
	assert.False(t, state.IsGameActive())
	assert.False(t, state.IsProcessing())

	state.TurnQueue = NewTurnQueue(1, 2)
	state.YourTurn = false
	state.Running = true
	assert.False(t, state.CanPlay())
	assert.True(t, state.IsGameActive())
	assert.True(t, state.IsProcessing())

	state.TurnQueue = nil
	state.YourTurn = true
	state.Over = true
	assert.False(t, state.CanPlay())
	assert.False(t, state.IsGameActive())
}

func TestNewTurnQueue_RoundRobinOrder(t *testing.T) {
	queue := NewTurnQueue(10, 3)

	assert.Len(t, queue, 4)
	assert.Equal(t, TurnTypePlayer, queue[0].Type)
	for i := 1; i < 4; i++ {
		assert.Equal(t, TurnTypeBot, queue[i].Type)
		assert.Equal(t, i-1, queue[i].BotIndex)
		assert.Equal(t, 10, queue[i].BatchSize)
	}
}
