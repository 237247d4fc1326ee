package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"drawdown/domain/entities"
	"drawdown/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// BatchOptions carries the optional progress hooks a batch run reports
// through. All callbacks receive defensive clones.
type BatchOptions struct {
	OnProgress func(percent float64)
	OnUpdate   func(agent *entities.Agent)
	OnComplete func(agent *entities.Agent)
	OnError    func(err error)
}

type batchRun struct {
	done  chan struct{}
	agent *entities.Agent
	err   error
}

// BatchProcessor executes a bounded run of trades for one agent in
// chunks, yielding between chunks so a host event loop stays responsive.
// At most one batch is in flight per processor; a concurrent call joins
// the running batch and receives its result.
type BatchProcessor struct {
	clock  interfaces.Clock
	roller interfaces.RollService
	stats  interfaces.StatsService

	mu         sync.Mutex
	inflight   *batchRun
	shouldStop atomic.Bool
	monitor    *performanceMonitor
}

// NewBatchProcessor creates a batch processor on the given collaborators.
func NewBatchProcessor(clock interfaces.Clock, roller interfaces.RollService, stats interfaces.StatsService) *BatchProcessor {
	return &BatchProcessor{
		clock:   clock,
		roller:  roller,
		stats:   stats,
		monitor: newPerformanceMonitor(clock),
	}
}

// ProcessBatch runs up to Settings.BatchRoll.Size trades for the agent
// and returns the final snapshot. Bankruptcy and chunk timeouts are
// normal control flow surfaced through the snapshot's BatchResults; only
// a fault inside the trade loop returns an error, and the returned agent
// then holds the last successfully applied state.
func (p *BatchProcessor) ProcessBatch(agent *entities.Agent, settings entities.Settings, risk float64, streakAdjustmentActive bool, opts BatchOptions) (*entities.Agent, error) {
	p.mu.Lock()
	if p.inflight != nil {
		run := p.inflight
		p.mu.Unlock()
		<-run.done
		return run.agent, run.err
	}
	run := &batchRun{done: make(chan struct{})}
	p.inflight = run
	p.shouldStop.Store(false)
	p.mu.Unlock()

	run.agent, run.err = p.run(agent, settings, risk, streakAdjustmentActive, opts)

	p.mu.Lock()
	p.inflight = nil
	p.mu.Unlock()
	close(run.done)

	return run.agent, run.err
}

// Stop requests cooperative early termination. It is observed at the top
// of each trade iteration, never mid-trade.
func (p *BatchProcessor) Stop() {
	p.shouldStop.Store(true)
}

// IsActive reports whether a batch is currently running.
func (p *BatchProcessor) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight != nil
}

// Metrics returns aggregate chunk timings for the processor's lifetime.
func (p *BatchProcessor) Metrics() ProcessingMetrics {
	return p.monitor.metrics()
}

func (p *BatchProcessor) run(initial *entities.Agent, settings entities.Settings, risk float64, streakAdjustmentActive bool, opts BatchOptions) (final *entities.Agent, err error) {
	current := initial.Clone()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch processing fault: %v", r)
			final = current
			log.WithError(err).WithField("agentID", initial.ID).Error("Batch run aborted")
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}
	}()

	batchSize := settings.BatchRoll.Size
	threshold := settings.BankruptcyThreshold
	results := entities.NewBatchResults()
	processed := 0

	// An agent already below the bankruptcy threshold gets no trades.
	if current.IsBankrupt(threshold) {
		results.Interrupted = true
		current.BatchResults = results.Clone()
		if opts.OnComplete != nil {
			opts.OnComplete(current.Clone())
		}
		return current, nil
	}

	lastUpdate := p.clock.Now()

	for processed < batchSize && !p.shouldStop.Load() {
		chunkSize := min(settings.BatchRoll.ChunkSize, batchSize-processed)
		chunkStart := p.clock.Now()

		for i := 0; i < chunkSize && processed < batchSize && !p.shouldStop.Load(); i++ {
			roll := p.roller.Roll(settings, streakAdjustmentActive)
			change := p.roller.Change(current.Balance, risk, roll.Won, roll.Multiplier)

			if roll.Won {
				results.RecordWin(roll.Multiplier, change)
			} else {
				results.RecordLoss(-change)
			}

			current = p.stats.ApplyTrade(current, change, roll.Won, roll.Multiplier)
			processed++

			if current.IsBankrupt(threshold) {
				p.shouldStop.Store(true)
				break
			}

			// Stay inside the per-chunk wall-clock budget.
			if p.clock.Now().Sub(chunkStart) > settings.BatchRoll.MaxProcessingTime {
				break
			}
		}

		p.monitor.recordChunk(p.clock.Now().Sub(chunkStart))

		results.ProcessedTrades = processed
		results.Interrupted = p.shouldStop.Load() || processed < batchSize
		current.BatchResults = results.Clone()

		now := p.clock.Now()
		if now.Sub(lastUpdate) >= settings.BatchRoll.UpdateFrequency {
			lastUpdate = now
			if opts.OnProgress != nil {
				opts.OnProgress(float64(processed) / float64(batchSize) * 100)
			}
			if opts.OnUpdate != nil {
				opts.OnUpdate(current.Clone())
			}
			// Cooperative yield between chunks.
			p.clock.Sleep(settings.BatchRoll.BatchUpdateDelay)
		}
	}

	log.WithFields(log.Fields{
		"agentID":     initial.ID,
		"processed":   processed,
		"batchSize":   batchSize,
		"interrupted": results.Interrupted,
	}).Debug("Batch run finished")

	if opts.OnComplete != nil {
		opts.OnComplete(current.Clone())
	}
	return current, nil
}
