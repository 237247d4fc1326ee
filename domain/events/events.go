package events

import (
	"context"
	"sync"

	"drawdown/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeBankruptcyReached EventType = "bankruptcy_reached"
	EventTypeStreakRecord      EventType = "streak_record"
	EventTypeGameOver          EventType = "game_over"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change from one processed trade
type BalanceChangeEvent struct {
	AgentID    string
	OldBalance float64
	NewBalance float64
	Change     float64
	Won        bool
	Multiplier int
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BankruptcyReachedEvent fires when an agent's balance drops below the
// bankruptcy-cue ratio of its starting balance.
type BankruptcyReachedEvent struct {
	AgentID string
}

func (e BankruptcyReachedEvent) Type() EventType {
	return EventTypeBankruptcyReached
}

// StreakDirection tags a streak record with its direction.
type StreakDirection string

const (
	StreakDirectionWin  StreakDirection = "win"
	StreakDirectionLoss StreakDirection = "loss"
)

// StreakRecordEvent fires when an agent breaks its best win streak or
// worst loss streak.
type StreakRecordEvent struct {
	AgentID   string
	Direction StreakDirection
	Length    int
}

func (e StreakRecordEvent) Type() EventType {
	return EventTypeStreakRecord
}

// GameOverEvent fires exactly once when the simulation reaches a terminal
// state.
type GameOverEvent struct {
	SessionID string
	Reason    entities.GameOverReason
}

func (e GameOverEvent) Type() EventType {
	return EventTypeGameOver
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish dispatches an event to all registered handlers. Handlers run
// synchronously in subscription order; the simulation core is a
// single-owner cooperative model and depends on signal ordering. A
// panicking handler is recovered and logged, never propagated into the
// simulation.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	ctx := context.Background()
	for i, handler := range handlers {
		func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
	return nil
}
