package entities

// RollResult is the outcome of a single trade roll.
type RollResult struct {
	Won        bool
	Multiplier int
}

// ScoreboardEntry is one agent's row in the end-of-round ranking.
type ScoreboardEntry struct {
	Rank          int
	AgentID       string
	Balance       float64
	NetProfit     float64
	WinPercentage float64
	Trades        int
	Bankrupt      bool
}

// AgentSummary holds derived statistics for one agent over a finished
// session, computed from its balance history.
type AgentSummary struct {
	AgentID       string
	NetProfit     float64
	WinPercentage float64
	MeanReturn    float64 // mean per-trade fractional balance change
	ReturnStdDev  float64
	MaxDrawdown   float64 // largest peak-to-trough fraction lost
	BestStreak    int
	WorstStreak   int
}

// SessionSummary is the full end-of-round report.
type SessionSummary struct {
	SessionID   string
	Reason      GameOverReason
	TurnsPlayed int
	Scoreboard  []ScoreboardEntry
	Agents      []AgentSummary
}
