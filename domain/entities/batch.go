package entities

// BatchResults is the transient summary of one batch run, attached to the
// agent snapshot while a batch is in flight and on completion.
type BatchResults struct {
	Wins            map[int]int // multiplier -> win count
	TotalWins       float64
	TotalLosses     float64
	ProcessedTrades int
	Interrupted     bool
}

// NewBatchResults returns an empty batch summary.
func NewBatchResults() *BatchResults {
	return &BatchResults{Wins: make(map[int]int)}
}

// RecordWin tallies a winning trade under its multiplier.
func (r *BatchResults) RecordWin(multiplier int, change float64) {
	r.Wins[multiplier]++
	r.TotalWins += change
}

// RecordLoss tallies a losing trade's absolute amount.
func (r *BatchResults) RecordLoss(amount float64) {
	r.TotalLosses += amount
}

// Clone returns a deep copy of the summary.
func (r *BatchResults) Clone() *BatchResults {
	clone := *r
	clone.Wins = make(map[int]int, len(r.Wins))
	for m, c := range r.Wins {
		clone.Wins[m] = c
	}
	return &clone
}
