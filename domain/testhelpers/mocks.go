package testhelpers

import (
	"drawdown/domain/entities"
	"drawdown/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// RecordingPublisher captures published events for assertions without
// expectation setup.
type RecordingPublisher struct {
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.Events = append(p.Events, event)
	return nil
}

// ByType returns the captured events of one type, in publish order.
func (p *RecordingPublisher) ByType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.Events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockRollService is a mock implementation of RollService
type MockRollService struct {
	mock.Mock
}

func (m *MockRollService) Roll(settings entities.Settings, streakAdjustmentActive bool) entities.RollResult {
	args := m.Called(settings, streakAdjustmentActive)
	return args.Get(0).(entities.RollResult)
}

func (m *MockRollService) Change(balance, riskPercent float64, won bool, multiplier int) float64 {
	args := m.Called(balance, riskPercent, won, multiplier)
	return args.Get(0).(float64)
}

// ScriptedRollService returns canned results in order, repeating the last
// one when the script runs out. Change is computed for real.
type ScriptedRollService struct {
	Results []entities.RollResult
	next    int
}

func (s *ScriptedRollService) Roll(settings entities.Settings, streakAdjustmentActive bool) entities.RollResult {
	if len(s.Results) == 0 {
		return entities.RollResult{Won: false, Multiplier: 1}
	}
	r := s.Results[s.next]
	if s.next < len(s.Results)-1 {
		s.next++
	}
	return r
}

func (s *ScriptedRollService) Change(balance, riskPercent float64, won bool, multiplier int) float64 {
	stake := balance * riskPercent / 100
	if won {
		return stake * float64(multiplier)
	}
	return -stake
}
