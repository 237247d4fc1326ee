package cmd

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"drawdown/config"
	"drawdown/domain/events"
	"drawdown/domain/interfaces"
	"drawdown/domain/services"
	"drawdown/domain/utils"
	"drawdown/engine"
	"drawdown/infrastructure"
)

// pollInterval is how often the auto-play loop re-checks the game state.
const pollInterval = 5 * time.Millisecond

// Run initializes the simulation core and, in auto-play mode, drives
// player turns until the game ends, then logs the session report.
func Run(ctx context.Context) error {
	cfg := config.Get()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("Starting drawdown simulation...")

	// Event bus with logging subscribers for the core's signals
	eventBus := events.NewBus()
	gameOver := make(chan events.GameOverEvent, 1)
	subscribeLogging(eventBus, gameOver)

	// Core services
	clock := infrastructure.NewSystemClock()
	rollService := services.NewRollService(nil)
	statsService := services.NewStatsService(eventBus)
	terminationService := services.NewTerminationService()
	summaryService := services.NewSummaryService()

	scheduler := engine.NewTurnScheduler(cfg.Settings, clock, rollService, statsService, terminationService, eventBus)
	defer scheduler.Teardown()

	log.WithFields(log.Fields{
		"sessionID": scheduler.SessionID(),
		"autoPlay":  cfg.AutoPlay,
	}).Info("Simulation ready")

	if !cfg.AutoPlay {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Simulation interrupted")
			return nil
		case over := <-gameOver:
			logSessionReport(scheduler, summaryService, over)
			return nil
		case <-time.After(pollInterval):
			if scheduler.State().CanPlay() {
				scheduler.StartPlayerTurn()
			}
		}
	}
}

func subscribeLogging(bus *events.Bus, gameOver chan<- events.GameOverEvent) {
	bus.Subscribe(events.EventTypeBankruptcyReached, func(ctx context.Context, event events.Event) {
		e := event.(events.BankruptcyReachedEvent)
		log.WithField("agentID", e.AgentID).Info("Agent went bust")
	})
	bus.Subscribe(events.EventTypeStreakRecord, func(ctx context.Context, event events.Event) {
		e := event.(events.StreakRecordEvent)
		log.WithFields(log.Fields{
			"agentID":   e.AgentID,
			"direction": e.Direction,
			"length":    e.Length,
		}).Info("Streak record broken")
	})
	bus.Subscribe(events.EventTypeGameOver, func(ctx context.Context, event events.Event) {
		e := event.(events.GameOverEvent)
		select {
		case gameOver <- e:
		default:
		}
	})
}

func logSessionReport(scheduler *engine.TurnScheduler, summaryService interfaces.SummaryService, over events.GameOverEvent) {
	settings := scheduler.Settings()
	state := scheduler.State()
	summary := summaryService.Summarize(over.SessionID, over.Reason, state.TurnsPlayed, scheduler.Player(), scheduler.Bots(), settings.BankruptcyThreshold)

	log.WithFields(log.Fields{
		"sessionID":   summary.SessionID,
		"reason":      summary.Reason,
		"turnsPlayed": summary.TurnsPlayed,
	}).Info("Session finished")

	for _, entry := range summary.Scoreboard {
		log.WithFields(log.Fields{
			"rank":     entry.Rank,
			"agentID":  entry.AgentID,
			"balance":  utils.FormatShortNotation(entry.Balance),
			"profit":   utils.FormatShortNotation(entry.NetProfit),
			"winRate":  entry.WinPercentage,
			"trades":   entry.Trades,
			"bankrupt": entry.Bankrupt,
		}).Info("Scoreboard entry")
	}
}
