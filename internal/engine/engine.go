package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"orb-trader/internal/clock"
	"orb-trader/internal/config"
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// IntentSink consumes order intents. The implementation owns actual
// brokerage interaction; the engine never waits on it.
type IntentSink interface {
	SubmitIntent(models.OrderIntent)
}

// AuditSink consumes trade lifecycle events and completed trade records.
type AuditSink interface {
	RecordEvent(models.TradeEvent)
	RecordTrade(models.TradeRecord)
}

// Options tunes engine behaviour per run mode.
type Options struct {
	Paper          bool
	DisableTimer   bool // replay mode drives time from tick timestamps only
	BlockingIngest bool // replay mode applies backpressure instead of dropping ticks
}

// Engine fans the tick stream out to one worker goroutine per instrument
// and drains their intent/audit queues into the configured sinks. Workers
// share nothing but the daily risk governor.
type Engine struct {
	cfg         *config.Config
	clk         clock.Clock
	logger      zerolog.Logger
	instruments []models.Instrument
	intentSink  IntentSink
	auditSink   AuditSink
	opts        Options

	mu       sync.Mutex
	session  *clock.SessionClock
	governor *Governor
	workers  map[string]*worker
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	intents chan models.OrderIntent
	audit   chan models.TradeEvent
	trades  chan models.TradeRecord
}

// NewEngine creates an engine for the given instruments. Instruments
// disabled in configuration are not given workers.
func NewEngine(cfg *config.Config, instruments []models.Instrument, clk clock.Clock, logger zerolog.Logger, intentSink IntentSink, auditSink AuditSink, opts Options) *Engine {
	return &Engine{
		cfg:         cfg,
		clk:         clk,
		logger:      logger,
		instruments: instruments,
		intentSink:  intentSink,
		auditSink:   auditSink,
		opts:        opts,
		intents:     make(chan models.OrderIntent, 128),
		audit:       make(chan models.TradeEvent, 256),
		trades:      make(chan models.TradeRecord, 64),
	}
}

// StartSession begins a trading session: the opening-range capture window
// starts at open and every position is squared off at squareOff.
func (e *Engine) StartSession(ctx context.Context, open, squareOff time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		return apperrors.NewPreconditionError("engine", "session active", "start session")
	}

	e.session = clock.NewSessionClock(open, e.cfg.CaptureWindow(), squareOff)
	e.governor = NewGovernor(e.cfg.Monitoring.MaxDailyTrades, e.cfg.Monitoring.MaxDailyLoss)
	e.workers = make(map[string]*worker)

	ctx, e.cancel = context.WithCancel(ctx)

	for _, inst := range e.instruments {
		if !inst.Enabled {
			continue
		}
		w := newWorker(inst, e.cfg, e.session, e.governor, e.logger, e.opts.Paper, e.opts.BlockingIngest, e.intents, e.audit, e.trades)
		e.workers[inst.Symbol] = w
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			w.run(ctx)
		}()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.drain(ctx)
	}()

	if !e.opts.DisableTimer {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.timerLoop(ctx)
		}()
	}

	e.logger.Info().
		Time("open", open).
		Time("square_off", squareOff).
		Int("instruments", len(e.workers)).
		Msg("Session started")
	return nil
}

// OnTick routes a tick to its instrument worker. Ticks for unknown or
// disabled instruments are dropped.
func (e *Engine) OnTick(t models.Tick) error {
	e.mu.Lock()
	w, ok := e.workers[t.Symbol]
	active := e.session != nil
	e.mu.Unlock()

	if !active {
		return apperrors.ErrSessionNotActive
	}
	if !ok {
		return nil
	}
	w.enqueueTick(t)
	return nil
}

// ForceCloseSession squares off every open position immediately, ahead of
// the scheduled session end. Positions closed this way carry reason MANUAL.
func (e *Engine) ForceCloseSession() error {
	e.mu.Lock()
	workers := e.workers
	active := e.session != nil
	e.mu.Unlock()

	if !active {
		return apperrors.ErrSessionNotActive
	}
	now := e.clk.Now()
	for _, w := range workers {
		w.enqueueForceClose(now, models.ExitReasonManual)
	}
	e.logger.Info().Msg("Forced session close requested")
	return nil
}

// Stop tears the session down after draining in-flight work.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	e.wg.Wait()
	e.flushSinks()

	e.mu.Lock()
	e.session = nil
	e.cancel = nil
	e.mu.Unlock()
	e.logger.Info().Msg("Engine stopped")
}

// DailyStats returns the governor's trade count and realized P&L.
func (e *Engine) DailyStats() (trades int, pnl float64) {
	e.mu.Lock()
	g := e.governor
	e.mu.Unlock()
	if g == nil {
		return 0, 0
	}
	return g.Stats()
}

// timerLoop feeds periodic time checks to every worker so time-based exits
// fire even when the tick stream stalls.
func (e *Engine) timerLoop(ctx context.Context) {
	interval := time.Duration(e.cfg.Timing.TimerSeconds) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := e.clk.Now()
			e.mu.Lock()
			for _, w := range e.workers {
				w.enqueueTimer(now)
			}
			e.mu.Unlock()
		}
	}
}

// drain moves intents, audit events and trade records from the worker
// queues to the sinks. Workers never block on sink latency.
func (e *Engine) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-e.intents:
			e.intentSink.SubmitIntent(in)
		case ev := <-e.audit:
			e.auditSink.RecordEvent(ev)
		case rec := <-e.trades:
			e.auditSink.RecordTrade(rec)
		}
	}
}

// flushSinks delivers anything still queued after the drain loop exits.
func (e *Engine) flushSinks() {
	for {
		select {
		case in := <-e.intents:
			e.intentSink.SubmitIntent(in)
		case ev := <-e.audit:
			e.auditSink.RecordEvent(ev)
		case rec := <-e.trades:
			e.auditSink.RecordTrade(rec)
		default:
			return
		}
	}
}
