package entities

import "time"

// Batch size and speed bounds. Values outside these ranges are silently
// clamped rather than rejected.
const (
	MinBatchSize = 4
	MaxBatchSize = 100

	MinAutoPlaySpeed = 1 * time.Millisecond
	MaxAutoPlaySpeed = 1000 * time.Millisecond
)

// BatchConfig controls batch-mode trade processing.
type BatchConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Size              int           `yaml:"size"`
	AutoPlaySpeed     time.Duration `yaml:"auto_play_speed"`
	UpdateFrequency   time.Duration `yaml:"update_frequency"`
	BatchUpdateDelay  time.Duration `yaml:"batch_update_delay"`
	ChunkSize         int           `yaml:"chunk_size"`
	MaxProcessingTime time.Duration `yaml:"max_processing_time"`
}

// StreakAdjustment configures the temporary win-probability perturbation
// applied after a long enough streak.
type StreakAdjustment struct {
	Enabled        bool `yaml:"enabled"`
	RequiredStreak int  `yaml:"required_streak"`
	Duration       int  `yaml:"duration"`   // number of trades the adjustment lasts
	Adjustment     int  `yaml:"adjustment"` // percentage points, signed
}

// Settings is the full simulation configuration.
type Settings struct {
	StartingBalance     float64          `yaml:"starting_balance"`
	WinProbability      float64          `yaml:"win_probability"` // 0-100
	Multipliers         map[int]float64  `yaml:"multipliers"`     // multiplier -> selection weight
	EnabledMultipliers  []int            `yaml:"enabled_multipliers"`
	TurnDelay           time.Duration    `yaml:"turn_delay"`
	BotCount            int              `yaml:"bot_count"`
	BankruptcyThreshold float64          `yaml:"bankruptcy_threshold"` // fraction of starting balance
	MaxTurns            int              `yaml:"max_turns"`            // 0 = unlimited
	StreakAdjustment    StreakAdjustment `yaml:"streak_adjustment"`
	BatchRoll           BatchConfig      `yaml:"batch_roll"`
}

// DefaultSettings returns the stock simulation configuration.
func DefaultSettings() Settings {
	return Settings{
		StartingBalance: 100,
		WinProbability:  50,
		Multipliers: map[int]float64{
			2:  10,
			3:  3,
			4:  1,
			5:  0.5,
			10: 0,
		},
		EnabledMultipliers:  []int{2, 3, 4, 5},
		TurnDelay:           10 * time.Millisecond,
		BotCount:            8,
		BankruptcyThreshold: 0.5,
		MaxTurns:            0,
		StreakAdjustment: StreakAdjustment{
			Enabled:        false,
			RequiredStreak: 5,
			Duration:       10,
			Adjustment:     -10,
		},
		BatchRoll: BatchConfig{
			Enabled:           false,
			Size:              10,
			AutoPlaySpeed:     100 * time.Millisecond,
			UpdateFrequency:   100 * time.Millisecond,
			BatchUpdateDelay:  16 * time.Millisecond,
			ChunkSize:         5,
			MaxProcessingTime: 50 * time.Millisecond,
		},
	}
}

// DefaultBotRisks is the stock per-bot risk ladder, truncated or extended
// with its last value to match the configured bot count.
var DefaultBotRisks = []float64{5, 10, 15, 20, 25, 30, 40, 50}

// SafeBatchSize clamps a batch size to the allowed range.
func SafeBatchSize(size int) int {
	if size < MinBatchSize {
		return MinBatchSize
	}
	if size > MaxBatchSize {
		return MaxBatchSize
	}
	return size
}

// SafeAutoPlaySpeed clamps an auto-play speed to the allowed range.
func SafeAutoPlaySpeed(speed time.Duration) time.Duration {
	if speed < MinAutoPlaySpeed {
		return MinAutoPlaySpeed
	}
	if speed > MaxAutoPlaySpeed {
		return MaxAutoPlaySpeed
	}
	return speed
}

// Normalize clamps out-of-range values and fills zero-valued batch fields
// with their defaults. Invalid values are never an error.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if s.StartingBalance <= 0 {
		s.StartingBalance = def.StartingBalance
	}
	if s.BankruptcyThreshold <= 0 {
		s.BankruptcyThreshold = def.BankruptcyThreshold
	}
	if s.BotCount < 0 {
		s.BotCount = 0
	}
	if s.MaxTurns < 0 {
		s.MaxTurns = 0
	}
	if s.TurnDelay <= 0 {
		s.TurnDelay = def.TurnDelay
	}
	s.BatchRoll.Size = SafeBatchSize(s.BatchRoll.Size)
	s.BatchRoll.AutoPlaySpeed = SafeAutoPlaySpeed(s.BatchRoll.AutoPlaySpeed)
	if s.BatchRoll.ChunkSize <= 0 {
		s.BatchRoll.ChunkSize = def.BatchRoll.ChunkSize
	}
	if s.BatchRoll.MaxProcessingTime <= 0 {
		s.BatchRoll.MaxProcessingTime = def.BatchRoll.MaxProcessingTime
	}
	if s.BatchRoll.UpdateFrequency <= 0 {
		s.BatchRoll.UpdateFrequency = def.BatchRoll.UpdateFrequency
	}
	if s.BatchRoll.BatchUpdateDelay <= 0 {
		s.BatchRoll.BatchUpdateDelay = def.BatchRoll.BatchUpdateDelay
	}
	if s.Multipliers == nil {
		s.Multipliers = map[int]float64{}
	}
	// Unknown enabled multipliers degrade to weight 0 entries rather than
	// crashing a roll.
	for _, m := range s.EnabledMultipliers {
		if _, ok := s.Multipliers[m]; !ok {
			s.Multipliers[m] = 0
		}
	}
}

// BotRisks returns the risk ladder sized to the configured bot count.
func (s *Settings) BotRisks() []float64 {
	risks := make([]float64, s.BotCount)
	for i := range risks {
		if i < len(DefaultBotRisks) {
			risks[i] = DefaultBotRisks[i]
		} else {
			risks[i] = DefaultBotRisks[len(DefaultBotRisks)-1]
		}
	}
	return risks
}
