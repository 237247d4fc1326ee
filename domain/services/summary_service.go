package services

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"drawdown/domain/entities"
	"drawdown/domain/interfaces"
)

type summaryService struct{}

// NewSummaryService creates the end-of-round reporting service.
func NewSummaryService() interfaces.SummaryService {
	return &summaryService{}
}

// Scoreboard ranks all agents by balance, descending. Ties keep the
// player-first, then bot-index order.
func (s *summaryService) Scoreboard(player *entities.Agent, bots []*entities.Agent, bankruptcyThreshold float64) []entities.ScoreboardEntry {
	agents := make([]*entities.Agent, 0, len(bots)+1)
	agents = append(agents, player)
	agents = append(agents, bots...)

	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].Balance > agents[j].Balance
	})

	entries := make([]entities.ScoreboardEntry, len(agents))
	for i, agent := range agents {
		entries[i] = entities.ScoreboardEntry{
			Rank:          i + 1,
			AgentID:       agent.ID,
			Balance:       agent.Balance,
			NetProfit:     agent.NetProfit(),
			WinPercentage: agent.WinPercentage(),
			Trades:        agent.Trades,
			Bankrupt:      agent.IsBankrupt(bankruptcyThreshold),
		}
	}
	return entries
}

// Summarize builds the full session report: the scoreboard plus per-agent
// derived statistics over each balance history.
func (s *summaryService) Summarize(sessionID string, reason entities.GameOverReason, turnsPlayed int, player *entities.Agent, bots []*entities.Agent, bankruptcyThreshold float64) entities.SessionSummary {
	summary := entities.SessionSummary{
		SessionID:   sessionID,
		Reason:      reason,
		TurnsPlayed: turnsPlayed,
		Scoreboard:  s.Scoreboard(player, bots, bankruptcyThreshold),
	}

	summary.Agents = append(summary.Agents, summarizeAgent(player))
	for _, bot := range bots {
		summary.Agents = append(summary.Agents, summarizeAgent(bot))
	}
	return summary
}

func summarizeAgent(agent *entities.Agent) entities.AgentSummary {
	returns := historyReturns(agent.History)

	out := entities.AgentSummary{
		AgentID:       agent.ID,
		NetProfit:     agent.NetProfit(),
		WinPercentage: agent.WinPercentage(),
		MaxDrawdown:   maxDrawdown(agent.History),
		BestStreak:    agent.BestWinStreak,
		WorstStreak:   agent.WorstLossStreak,
	}
	if len(returns) > 0 {
		out.MeanReturn = stat.Mean(returns, nil)
	}
	if len(returns) > 1 {
		out.ReturnStdDev = stat.StdDev(returns, nil)
	}
	return out
}

// historyReturns converts a balance history to per-trade fractional
// changes. Samples after a zero balance produce no return.
func historyReturns(history []entities.BalancePoint) []float64 {
	if len(history) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Balance
		if prev == 0 {
			continue
		}
		returns = append(returns, (history[i].Balance-prev)/prev)
	}
	return returns
}

// maxDrawdown returns the largest fraction lost from any running peak.
func maxDrawdown(history []entities.BalancePoint) float64 {
	peak := 0.0
	worst := 0.0
	for _, point := range history {
		if point.Balance > peak {
			peak = point.Balance
		}
		if peak > 0 {
			drawdown := (peak - point.Balance) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return worst
}
