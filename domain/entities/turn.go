package entities

// TurnType tags a queued turn with its owner kind.
type TurnType string

const (
	TurnTypePlayer TurnType = "player"
	TurnTypeBot    TurnType = "bot"
)

// Turn is one pending per-agent action in the round's queue.
type Turn struct {
	Type      TurnType
	BotIndex  int // valid when Type == TurnTypeBot
	BatchSize int
}

// NewTurnQueue builds a round's queue: one player turn followed by one
// turn per bot, in index order, all tagged with the same batch size.
func NewTurnQueue(batchSize, botCount int) []Turn {
	queue := make([]Turn, 0, botCount+1)
	queue = append(queue, Turn{Type: TurnTypePlayer, BatchSize: batchSize})
	for i := 0; i < botCount; i++ {
		queue = append(queue, Turn{Type: TurnTypeBot, BotIndex: i, BatchSize: batchSize})
	}
	return queue
}

// GameState tracks whose turn it is and where the round stands.
type GameState struct {
	YourTurn                  bool
	Running                   bool
	Over                      bool
	OverReason                GameOverReason
	TurnsPlayed               int
	StreakAdjustmentActive    bool
	StreakAdjustmentRemaining int
	ProcessingBatch           bool
	ProcessingProgress        float64 // percent of the in-flight batch completed
	TurnQueue                 []Turn
}

// GameOverReason names why a simulation ended.
type GameOverReason string

const (
	GameOverPlayerBankrupt GameOverReason = "player-bankrupt"
	GameOverBotsBankrupt   GameOverReason = "bots-bankrupt"
	GameOverTurnLimit      GameOverReason = "turn-limit"
)

// NewGameState returns the initial state: the player holds the turn and
// nothing is queued.
func NewGameState() *GameState {
	return &GameState{YourTurn: true}
}

// Clone returns a deep copy of the state.
func (g *GameState) Clone() *GameState {
	clone := *g
	clone.TurnQueue = make([]Turn, len(g.TurnQueue))
	copy(clone.TurnQueue, g.TurnQueue)
	return &clone
}

// IsGameActive reports whether a round is running and the game is not over.
func (g *GameState) IsGameActive() bool {
	return !g.Over && g.Running
}

// IsProcessing reports whether any turn or batch work is pending.
func (g *GameState) IsProcessing() bool {
	return g.ProcessingBatch || len(g.TurnQueue) > 0
}

// CanPlay reports whether the player may start a turn right now.
func (g *GameState) CanPlay() bool {
	return g.YourTurn && !g.Over && !g.IsProcessing()
}
