package entities

// BalancePoint is one sample of an agent's balance history, taken after
// the trade with the given index (index 0 is the starting balance).
type BalancePoint struct {
	Trade   int
	Balance float64
}

// Agent represents the player or a bot: an independent balance-tracking
// entity executing trades. All balance fields are in account units.
type Agent struct {
	ID              string
	Balance         float64
	Trades          int
	Wins            int
	Losses          int
	Streak          int // signed: positive = win streak, negative = loss streak
	BestWinStreak   int
	WorstLossStreak int
	PeakBalance     float64
	TroughBalance   float64
	LastChange      float64
	LastMultiplier  int
	TotalWinnings   float64
	TotalLosses     float64
	AvgGain         float64
	AvgLoss         float64
	StartingBalance float64
	History         []BalancePoint
	BatchResults    *BatchResults
}

// NewAgent creates an agent with the given starting balance. The history
// is seeded with the starting balance at trade index 0.
func NewAgent(id string, startingBalance float64) *Agent {
	return &Agent{
		ID:              id,
		Balance:         startingBalance,
		LastMultiplier:  1,
		PeakBalance:     startingBalance,
		TroughBalance:   startingBalance,
		StartingBalance: startingBalance,
		History:         []BalancePoint{{Trade: 0, Balance: startingBalance}},
	}
}

// BalanceRatio returns the balance as a fraction of the starting balance.
func (a *Agent) BalanceRatio() float64 {
	if a.StartingBalance == 0 {
		return 0
	}
	return a.Balance / a.StartingBalance
}

// IsBankrupt reports whether the agent's balance has dropped below the
// given fraction of its starting balance. The boundary is strict: exactly
// at the threshold is not bankrupt.
func (a *Agent) IsBankrupt(threshold float64) bool {
	return a.BalanceRatio() < threshold
}

// NetProfit returns the signed difference between current and starting balance.
func (a *Agent) NetProfit() float64 {
	return a.Balance - a.StartingBalance
}

// WinPercentage returns the fraction of winning trades as a percentage.
func (a *Agent) WinPercentage() float64 {
	if a.Trades == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.Trades) * 100
}

// Clone returns a deep copy of the agent. Consumers receive clones so no
// shared mutable aliasing exists between consecutive snapshots.
func (a *Agent) Clone() *Agent {
	clone := *a
	clone.History = make([]BalancePoint, len(a.History))
	copy(clone.History, a.History)
	if a.BatchResults != nil {
		clone.BatchResults = a.BatchResults.Clone()
	}
	return &clone
}
