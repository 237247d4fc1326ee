package engine

import (
	"testing"

	"drawdown/domain/entities"
	"drawdown/domain/events"
	"drawdown/domain/interfaces"
	"drawdown/domain/services"
	"drawdown/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(settings entities.Settings, roller interfaces.RollService) (*TurnScheduler, *testhelpers.FakeClock, *testhelpers.RecordingPublisher) {
	clock := testhelpers.NewFakeClock()
	publisher := &testhelpers.RecordingPublisher{}
	stats := services.NewStatsService(publisher)
	scheduler := NewTurnScheduler(settings, clock, roller, stats, services.NewTerminationService(), publisher)
	return scheduler, clock, publisher
}

func alwaysWin() *testhelpers.ScriptedRollService {
	return &testhelpers.ScriptedRollService{Results: []entities.RollResult{{Won: true, Multiplier: 2}}}
}

func alwaysLose() *testhelpers.ScriptedRollService {
	return &testhelpers.ScriptedRollService{Results: []entities.RollResult{{Won: false, Multiplier: 1}}}
}

func playRound(t *testing.T, scheduler *TurnScheduler, clock *testhelpers.FakeClock) {
	t.Helper()
	scheduler.StartPlayerTurn()
	clock.RunAll()
}

func TestTurnScheduler_StartPlayerTurn_QueuesFullRound(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 3
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())

	scheduler.StartPlayerTurn()

	state := scheduler.State()
	require.Len(t, state.TurnQueue, 4)
	assert.Equal(t, entities.TurnTypePlayer, state.TurnQueue[0].Type)
	assert.False(t, state.YourTurn)
	assert.True(t, state.Running)
	assert.Equal(t, 1, clock.PendingTimers())
}

func TestTurnScheduler_StartPlayerTurn_NoDuplicateQueue(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())

	scheduler.StartPlayerTurn()
	queued := len(scheduler.State().TurnQueue)

	// Starting again mid-round is a guarded no-op
	scheduler.StartPlayerTurn()
	assert.Equal(t, queued, len(scheduler.State().TurnQueue))
	assert.Equal(t, 1, clock.PendingTimers())
}

func TestTurnScheduler_RoundExecutesAllAgents(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())

	playRound(t, scheduler, clock)

	player := scheduler.Player()
	assert.Equal(t, 1, player.Trades)
	assert.Equal(t, 1, player.Wins)
	for _, bot := range scheduler.Bots() {
		assert.Equal(t, 1, bot.Trades)
	}

	state := scheduler.State()
	assert.True(t, state.YourTurn)
	assert.False(t, state.Running)
	assert.Empty(t, state.TurnQueue)
	assert.Equal(t, 1, state.TurnsPlayed)
	assert.False(t, state.Over)
}

func TestTurnScheduler_PlayerTradeUpdatesBalance(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 1
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())
	scheduler.SetPlayerRisk(10)

	playRound(t, scheduler, clock)

	// Risk 10% at multiplier 2 on 100: +20
	player := scheduler.Player()
	assert.Equal(t, 120.0, player.Balance)
	assert.Equal(t, 1, player.Streak)
}

func TestTurnScheduler_GameOver_PlayerBankrupt(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, publisher := newTestScheduler(settings, alwaysLose())
	scheduler.SetPlayerRisk(60)

	playRound(t, scheduler, clock)

	state := scheduler.State()
	assert.True(t, state.Over)
	assert.Equal(t, entities.GameOverPlayerBankrupt, state.OverReason)
	assert.False(t, state.YourTurn)
	assert.Empty(t, state.TurnQueue)

	// The round is cut short: bots never traded
	for _, bot := range scheduler.Bots() {
		assert.Equal(t, 0, bot.Trades)
	}

	overs := publisher.ByType(events.EventTypeGameOver)
	require.Len(t, overs, 1)
	assert.Equal(t, entities.GameOverPlayerBankrupt, overs[0].(events.GameOverEvent).Reason)

	// Further starts are refused and publish nothing new
	scheduler.StartPlayerTurn()
	clock.RunAll()
	assert.Len(t, publisher.ByType(events.EventTypeGameOver), 1)
}

func TestTurnScheduler_GameOver_TurnLimit(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 1
	settings.MaxTurns = 1
	scheduler, clock, publisher := newTestScheduler(settings, alwaysWin())

	playRound(t, scheduler, clock)

	state := scheduler.State()
	assert.True(t, state.Over)
	assert.Equal(t, entities.GameOverTurnLimit, state.OverReason)
	require.Len(t, publisher.ByType(events.EventTypeGameOver), 1)
}

func TestTurnScheduler_BankruptBotSkipsButSyncsTradeCount(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, _ := newTestScheduler(settings, alwaysLose())
	scheduler.SetBotRisk(0, 60)

	playRound(t, scheduler, clock)

	bots := scheduler.Bots()
	require.Equal(t, 40.0, bots[0].Balance)
	assert.True(t, bots[0].IsBankrupt(settings.BankruptcyThreshold))

	playRound(t, scheduler, clock)

	bots = scheduler.Bots()
	// The bankrupt bot sat the round out but its counter tracks the player
	assert.Equal(t, 40.0, bots[0].Balance)
	assert.Equal(t, scheduler.Player().Trades, bots[0].Trades)
	assert.Len(t, bots[0].History, 2)
	// The surviving bot keeps trading
	assert.Equal(t, 2, bots[1].Trades)
}

func TestTurnScheduler_StreakAdjustmentLifecycle(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 0
	settings.StreakAdjustment = entities.StreakAdjustment{
		Enabled:        true,
		RequiredStreak: 3,
		Duration:       2,
		Adjustment:     -10,
	}
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())

	playRound(t, scheduler, clock)
	playRound(t, scheduler, clock)
	assert.False(t, scheduler.State().StreakAdjustmentActive)

	// Third straight win crosses the threshold
	playRound(t, scheduler, clock)
	state := scheduler.State()
	assert.True(t, state.StreakAdjustmentActive)
	assert.Equal(t, 2, state.StreakAdjustmentRemaining)

	// The adjusted probability the next rolls will use
	assert.Equal(t, 40.0, services.EffectiveWinProbability(scheduler.Settings(), true))

	playRound(t, scheduler, clock)
	state = scheduler.State()
	assert.True(t, state.StreakAdjustmentActive)
	assert.Equal(t, 1, state.StreakAdjustmentRemaining)

	playRound(t, scheduler, clock)
	state = scheduler.State()
	assert.False(t, state.StreakAdjustmentActive)
	assert.Equal(t, 0, state.StreakAdjustmentRemaining)
}

func TestTurnScheduler_BatchModeRound(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 1
	settings.BatchRoll.Enabled = true
	settings.BatchRoll.Size = 10
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())

	playRound(t, scheduler, clock)

	player := scheduler.Player()
	assert.Equal(t, 10, player.Trades)
	require.NotNil(t, player.BatchResults)
	assert.Equal(t, 10, player.BatchResults.ProcessedTrades)
	assert.False(t, player.BatchResults.Interrupted)

	bot := scheduler.Bots()[0]
	assert.Equal(t, 10, bot.Trades)

	state := scheduler.State()
	assert.Equal(t, 10, state.TurnsPlayed)
	assert.False(t, state.ProcessingBatch)
	assert.True(t, state.YourTurn)
}

func TestTurnScheduler_RiskClamping(t *testing.T) {
	scheduler, _, _ := newTestScheduler(entities.DefaultSettings(), alwaysWin())

	scheduler.SetPlayerRisk(150)
	assert.Equal(t, 100.0, scheduler.PlayerRisk())
	scheduler.SetPlayerRisk(-5)
	assert.Equal(t, 0.0, scheduler.PlayerRisk())

	// Out-of-range bot index is ignored
	scheduler.SetBotRisk(99, 10)
}

func TestTurnScheduler_Reset(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())
	firstSession := scheduler.SessionID()

	playRound(t, scheduler, clock)
	scheduler.StartPlayerTurn()
	scheduler.Reset()

	player := scheduler.Player()
	assert.Equal(t, 100.0, player.Balance)
	assert.Equal(t, 0, player.Trades)

	state := scheduler.State()
	assert.True(t, state.YourTurn)
	assert.False(t, state.Running)
	assert.Empty(t, state.TurnQueue)
	assert.Equal(t, 0, state.TurnsPlayed)

	assert.NotEqual(t, firstSession, scheduler.SessionID())

	// The cancelled round's timer never fires a stale turn
	clock.RunAll()
	assert.Equal(t, 0, scheduler.Player().Trades)
}

func TestTurnScheduler_ApplySettings(t *testing.T) {
	settings := entities.DefaultSettings()
	settings.BotCount = 2
	scheduler, clock, _ := newTestScheduler(settings, alwaysWin())
	firstSession := scheduler.SessionID()

	playRound(t, scheduler, clock)

	// Non-structural change keeps the session
	tweaked := scheduler.Settings()
	tweaked.WinProbability = 75
	scheduler.ApplySettings(tweaked)
	assert.Equal(t, firstSession, scheduler.SessionID())
	assert.Equal(t, 1, scheduler.Player().Trades)

	// Changing the bot count resets the session
	tweaked.BotCount = 4
	scheduler.ApplySettings(tweaked)
	assert.NotEqual(t, firstSession, scheduler.SessionID())
	assert.Len(t, scheduler.Bots(), 4)
	assert.Equal(t, 0, scheduler.Player().Trades)
}
