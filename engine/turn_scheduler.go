package engine

import (
	"fmt"
	"sync"

	"drawdown/domain/entities"
	"drawdown/domain/events"
	"drawdown/domain/interfaces"
	"drawdown/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TurnScheduler owns the agents and game state of one simulation session
// and advances a round-robin queue of per-agent turns on a timer. All
// mutation goes through whole-record replacement; observers only ever see
// clones.
type TurnScheduler struct {
	clock       interfaces.Clock
	roller      interfaces.RollService
	stats       interfaces.StatsService
	termination interfaces.TerminationService
	publisher   interfaces.EventPublisher
	batch       *BatchProcessor

	mu         sync.Mutex
	sessionID  string
	settings   entities.Settings
	player     *entities.Agent
	bots       []*entities.Agent
	risk       float64
	botRisks   []float64
	state      *entities.GameState
	processing bool
	generation int
	timer      interfaces.Timer
}

// NewTurnScheduler creates a scheduler for the given settings. Settings
// are normalized (out-of-range values clamped) before use.
func NewTurnScheduler(settings entities.Settings, clock interfaces.Clock, roller interfaces.RollService, stats interfaces.StatsService, termination interfaces.TerminationService, publisher interfaces.EventPublisher) *TurnScheduler {
	settings.Normalize()
	s := &TurnScheduler{
		clock:       clock,
		roller:      roller,
		stats:       stats,
		termination: termination,
		publisher:   publisher,
		batch:       NewBatchProcessor(clock, roller, stats),
	}
	s.initSession(settings)
	return s
}

// initSession recreates agents and game state from scratch. Caller holds
// the lock except during construction.
func (s *TurnScheduler) initSession(settings entities.Settings) {
	s.sessionID = uuid.NewString()
	s.settings = settings
	s.player = entities.NewAgent("player", settings.StartingBalance)
	s.bots = make([]*entities.Agent, settings.BotCount)
	for i := range s.bots {
		s.bots[i] = entities.NewAgent(botID(i), settings.StartingBalance)
	}
	s.risk = 1
	s.botRisks = settings.BotRisks()
	s.state = entities.NewGameState()
	s.processing = false
	s.generation++

	log.WithFields(log.Fields{
		"sessionID": s.sessionID,
		"botCount":  settings.BotCount,
		"balance":   settings.StartingBalance,
	}).Info("Simulation session initialized")
}

func botID(index int) string {
	return fmt.Sprintf("bot-%d", index)
}

// SessionID returns the current session's identifier.
func (s *TurnScheduler) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Settings returns a copy of the active settings.
func (s *TurnScheduler) Settings() entities.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Player returns a snapshot of the player agent.
func (s *TurnScheduler) Player() *entities.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Clone()
}

// Bots returns snapshots of all bot agents, in index order.
func (s *TurnScheduler) Bots() []*entities.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.Agent, len(s.bots))
	for i, bot := range s.bots {
		out[i] = bot.Clone()
	}
	return out
}

// State returns a snapshot of the game state.
func (s *TurnScheduler) State() *entities.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// PlayerRisk returns the player's current risk percentage.
func (s *TurnScheduler) PlayerRisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.risk
}

// SetPlayerRisk sets the player's stake percentage, clamped to [0, 100].
func (s *TurnScheduler) SetPlayerRisk(risk float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risk = clampRisk(risk)
}

// SetBotRisk sets one bot's stake percentage, clamped to [0, 100].
// Out-of-range indexes are ignored.
func (s *TurnScheduler) SetBotRisk(index int, risk float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.botRisks) {
		return
	}
	s.botRisks[index] = clampRisk(risk)
}

func clampRisk(risk float64) float64 {
	if risk < 0 {
		return 0
	}
	if risk > 100 {
		return 100
	}
	return risk
}

// StartPlayerTurn queues a full round (player first, then each bot) and
// arms the turn timer. It is a no-op while the game is over, a round is
// already queued or processing, or the player is bankrupt.
func (s *TurnScheduler) StartPlayerTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Over || !s.state.YourTurn || len(s.state.TurnQueue) > 0 ||
		s.player.IsBankrupt(s.settings.BankruptcyThreshold) {
		return
	}

	batchSize := 1
	if s.settings.BatchRoll.Enabled {
		batchSize = s.settings.BatchRoll.Size
	}

	s.state.TurnQueue = entities.NewTurnQueue(batchSize, len(s.bots))
	s.state.YourTurn = false
	s.state.Running = true
	s.scheduleNextLocked()
}

// StopBatch requests cooperative termination of any in-flight batch.
func (s *TurnScheduler) StopBatch() {
	s.batch.Stop()
}

// BatchMetrics exposes the batch processor's chunk timings.
func (s *TurnScheduler) BatchMetrics() ProcessingMetrics {
	return s.batch.Metrics()
}

// Reset cancels pending timers, stops any in-flight batch and recreates
// agents and game state from scratch. No partial turn state survives.
func (s *TurnScheduler) Reset() {
	s.batch.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.initSession(s.settings)
}

// ApplySettings swaps in new settings. Changing the starting balance or
// the bot count resets the session; other changes take effect from the
// next turn.
func (s *TurnScheduler) ApplySettings(settings entities.Settings) {
	settings.Normalize()
	s.batchStopIfResetting(settings)
	s.mu.Lock()
	defer s.mu.Unlock()
	resetNeeded := settings.StartingBalance != s.settings.StartingBalance ||
		settings.BotCount != s.settings.BotCount
	s.settings = settings
	if resetNeeded {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.initSession(settings)
	}
}

func (s *TurnScheduler) batchStopIfResetting(settings entities.Settings) {
	s.mu.Lock()
	resetNeeded := settings.StartingBalance != s.settings.StartingBalance ||
		settings.BotCount != s.settings.BotCount
	s.mu.Unlock()
	if resetNeeded {
		s.batch.Stop()
	}
}

// Teardown cancels timers and stops batch work. The scheduler must not be
// used afterwards.
func (s *TurnScheduler) Teardown() {
	s.batch.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// scheduleNextLocked arms the per-turn timer for the head of the queue.
// Caller holds the lock.
func (s *TurnScheduler) scheduleNextLocked() {
	if len(s.state.TurnQueue) == 0 || s.processing {
		return
	}
	delay := s.settings.TurnDelay
	if s.settings.BatchRoll.Enabled {
		delay = s.settings.BatchRoll.AutoPlaySpeed
	}
	s.timer = s.clock.AfterFunc(delay, s.processTurn)
}

// processTurn executes exactly one queued turn. Re-entrant invocations
// while a turn is processing are guarded no-ops.
func (s *TurnScheduler) processTurn() {
	s.mu.Lock()
	if s.processing || s.state.Over || len(s.state.TurnQueue) == 0 {
		s.mu.Unlock()
		return
	}
	s.processing = true
	generation := s.generation
	turn := s.state.TurnQueue[0]
	settings := s.settings
	s.mu.Unlock()

	switch turn.Type {
	case entities.TurnTypePlayer:
		s.processPlayerTurn(turn, settings, generation)
	case entities.TurnTypeBot:
		s.processBotTurn(turn, settings, generation)
	}

	s.finishTurn(generation)
}

func (s *TurnScheduler) processPlayerTurn(turn entities.Turn, settings entities.Settings, generation int) {
	s.mu.Lock()
	agent := s.player
	risk := s.risk
	adjustmentActive := s.state.StreakAdjustmentActive
	s.mu.Unlock()

	var updated *entities.Agent
	if settings.BatchRoll.Enabled && turn.BatchSize > 1 {
		s.setProcessingBatch(true)
		var err error
		updated, err = s.batch.ProcessBatch(agent, settings, risk, adjustmentActive, s.playerBatchOptions(generation))
		if err != nil {
			// The returned snapshot holds the last successfully applied
			// state; keep it and carry on.
			log.WithError(err).Error("Player batch failed")
		}
	} else {
		roll := s.roller.Roll(settings, adjustmentActive)
		change := s.roller.Change(agent.Balance, risk, roll.Won, roll.Multiplier)
		updated = s.stats.ApplyTrade(agent, change, roll.Won, roll.Multiplier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.player = updated
	s.state.ProcessingBatch = false
	s.state.TurnsPlayed += turn.BatchSize
	if verdict := services.EvaluateStreakAdjustment(s.state, settings, updated.Streak); verdict != nil {
		s.state.StreakAdjustmentActive = verdict.Active
		s.state.StreakAdjustmentRemaining = verdict.Remaining
	}
	s.popTurnLocked()
}

func (s *TurnScheduler) processBotTurn(turn entities.Turn, settings entities.Settings, generation int) {
	s.mu.Lock()
	if turn.BotIndex >= len(s.bots) {
		s.popTurnLocked()
		s.mu.Unlock()
		return
	}
	agent := s.bots[turn.BotIndex]
	risk := s.botRisks[turn.BotIndex]
	playerTrades := s.player.Trades
	s.mu.Unlock()

	var updated *entities.Agent
	switch {
	case agent.IsBankrupt(settings.BankruptcyThreshold):
		// A bankrupt bot sits the round out but keeps its trade counter
		// in step with the player's.
		updated = agent.Clone()
		updated.Trades = playerTrades
	case settings.BatchRoll.Enabled && turn.BatchSize > 1:
		settings.BatchRoll.Size = turn.BatchSize
		var err error
		updated, err = s.batch.ProcessBatch(agent, settings, risk, false, s.botBatchOptions(turn.BotIndex, generation))
		if err != nil {
			log.WithError(err).WithField("bot", turn.BotIndex).Error("Bot batch failed")
		}
	default:
		roll := s.roller.Roll(settings, false)
		change := s.roller.Change(agent.Balance, risk, roll.Won, roll.Multiplier)
		updated = s.stats.ApplyTrade(agent, change, roll.Won, roll.Multiplier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return
	}
	s.bots[turn.BotIndex] = updated
	s.popTurnLocked()
}

// finishTurn re-evaluates termination and either schedules the next turn,
// returns the turn to the player, or ends the game.
func (s *TurnScheduler) finishTurn(generation int) {
	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return
	}
	s.processing = false

	over, reason := s.termination.Evaluate(s.player, s.bots, s.settings, s.state.TurnsPlayed)
	if over {
		s.state.Over = true
		s.state.OverReason = reason
		s.state.YourTurn = false
		s.state.Running = false
		s.state.TurnQueue = nil
		sessionID := s.sessionID
		s.mu.Unlock()

		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"reason":    reason,
		}).Info("Game over")
		if err := s.publisher.Publish(events.GameOverEvent{SessionID: sessionID, Reason: reason}); err != nil {
			log.WithError(err).Error("Failed to publish game over event")
		}
		return
	}

	if len(s.state.TurnQueue) == 0 {
		s.state.YourTurn = true
		s.state.Running = false
		s.mu.Unlock()
		return
	}

	s.scheduleNextLocked()
	s.mu.Unlock()
}

func (s *TurnScheduler) popTurnLocked() {
	if len(s.state.TurnQueue) > 0 {
		s.state.TurnQueue = s.state.TurnQueue[1:]
	}
}

func (s *TurnScheduler) setProcessingBatch(processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ProcessingBatch = processing
	if processing {
		s.state.ProcessingProgress = 0
	}
}

func (s *TurnScheduler) playerBatchOptions(generation int) BatchOptions {
	return BatchOptions{
		OnProgress: func(percent float64) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.generation != generation {
				return
			}
			s.state.ProcessingProgress = percent
		},
		OnUpdate: func(agent *entities.Agent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.generation != generation {
				return
			}
			s.player = agent
		},
	}
}

func (s *TurnScheduler) botBatchOptions(index, generation int) BatchOptions {
	return BatchOptions{
		OnUpdate: func(agent *entities.Agent) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.generation != generation || index >= len(s.bots) {
				return
			}
			s.bots[index] = agent
		},
	}
}
