package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"orb-trader/internal/clock"
	"orb-trader/internal/config"
	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/logging"
	"orb-trader/internal/models"
)

// workerPhase is the per-instrument session lifecycle.
type workerPhase int

const (
	phaseCapturing workerPhase = iota
	phaseArmed
	phaseInPosition
	phaseDisabled
	phaseDone
)

// event is one unit of work for an instrument worker: a tick from the
// feed, a periodic timer check, or a forced session close.
type event struct {
	tick   *models.Tick
	now    time.Time
	timer  bool
	force  bool
	reason models.ExitReason
}

const recentTickWindow = 32

// worker owns all mutable state for one instrument: the opening-range
// capture, the breakout level, the ATR series and the open position. It is
// the sole goroutine touching that state; only the governor is shared.
type worker struct {
	instrument models.Instrument
	cfg        *config.Config
	session    *clock.SessionClock
	governor   *Governor
	filters    *FilterEngine
	logger     zerolog.Logger

	capture    *RangeCapture
	level      models.BreakoutLevel
	atr        *ATREstimator
	aggregator *candleAggregator

	blocking  bool
	phase     workerPhase
	position  *Position
	recent    []models.Tick
	lastPrice float64
	tradeSeq  int
	isPaper   bool

	events  chan event
	intents chan<- models.OrderIntent
	audit   chan<- models.TradeEvent
	trades  chan<- models.TradeRecord
}

func newWorker(inst models.Instrument, cfg *config.Config, session *clock.SessionClock, governor *Governor, logger zerolog.Logger, isPaper, blocking bool, intents chan<- models.OrderIntent, audit chan<- models.TradeEvent, trades chan<- models.TradeRecord) *worker {
	return &worker{
		instrument: inst,
		cfg:        cfg,
		session:    session,
		governor:   governor,
		filters:    NewFilterEngine(cfg.Trading.EntryFilters),
		logger:     logging.WithSymbol(logger, inst.Symbol),
		capture:    NewRangeCapture(inst.Symbol, session.Open(), session.CaptureWindowEnd()),
		atr:        NewATREstimator(cfg.Trading.RiskManagement.ATRPeriods, cfg.Trading.RiskManagement.ATRFallback),
		phase:      phaseCapturing,
		isPaper:    isPaper,
		blocking:   blocking,
		events:     make(chan event, 256),
		intents:    intents,
		audit:      audit,
		trades:     trades,
	}
}

// enqueueTick hands a tick to the worker. Live feeds never block: a full
// queue drops the tick, the next one carries fresher state anyway. Replay
// feeds block instead, so no recorded tick is lost.
func (w *worker) enqueueTick(t models.Tick) {
	if w.blocking {
		w.events <- event{tick: &t, now: t.Timestamp}
		return
	}
	select {
	case w.events <- event{tick: &t, now: t.Timestamp}:
	default:
		w.logger.Warn().Msg("Tick queue full, dropping tick")
	}
}

// enqueueTimer hands a periodic time check to the worker without blocking.
func (w *worker) enqueueTimer(now time.Time) {
	select {
	case w.events <- event{now: now, timer: true}:
	default:
	}
}

// enqueueForceClose asks the worker to square off ahead of schedule. An
// operator-driven flatten carries MANUAL; the scheduled square-off keeps
// SESSION_CLOSE.
func (w *worker) enqueueForceClose(now time.Time, reason models.ExitReason) {
	select {
	case w.events <- event{now: now, force: true, reason: reason}:
	default:
		w.logger.Error().Msg("Worker queue full, force close not delivered")
	}
}

func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drainQueued()
			return
		case ev := <-w.events:
			w.handle(ev)
		}
	}
}

// drainQueued processes whatever is already enqueued at shutdown so a
// pending force close is not lost.
func (w *worker) drainQueued() {
	for {
		select {
		case ev := <-w.events:
			w.handle(ev)
		default:
			return
		}
	}
}

func (w *worker) handle(ev event) {
	switch {
	case ev.force:
		if w.phase != phaseDisabled && w.phase != phaseDone {
			w.sessionClose(w.lastPrice, ev.now, ev.reason)
		}
	case ev.timer:
		w.handleTimer(ev.now)
	default:
		w.handleTick(*ev.tick)
	}
}

func (w *worker) handleTick(t models.Tick) {
	if w.phase == phaseDisabled || w.phase == phaseDone {
		return
	}
	now := t.Timestamp

	if w.session.ForceCloseDue(now) {
		w.lastPrice = t.Price
		w.sessionClose(t.Price, now, models.ExitReasonSessionClose)
		return
	}

	if w.phase == phaseCapturing {
		if !w.session.CaptureWindowClosed(now) {
			w.capture.Observe(t)
			w.lastPrice = t.Price
			return
		}
		if !w.freezeCapture() {
			return
		}
	}

	w.lastPrice = t.Price

	if candle, ok := w.aggregator.Observe(t); ok {
		w.atr.AddCandle(candle)
	}

	switch w.phase {
	case phaseArmed:
		w.tryEnter(t)
	case phaseInPosition:
		w.applyUpdate(t.Price, now)
	}

	w.pushRecent(t)
}

// handleTimer drives the time-based exits when the tick stream stalls. All
// timer decisions use wall-clock time with the last seen price.
func (w *worker) handleTimer(now time.Time) {
	switch w.phase {
	case phaseDisabled, phaseDone:
		return
	case phaseCapturing:
		if w.session.CaptureWindowClosed(now) {
			w.freezeCapture()
		}
		return
	}

	if w.session.ForceCloseDue(now) {
		w.sessionClose(w.lastPrice, now, models.ExitReasonSessionClose)
		return
	}
	if w.phase == phaseInPosition {
		w.applyUpdate(w.lastPrice, now)
	}
}

// freezeCapture closes the opening-range window, computes the breakout
// level and arms the worker. A windowed capture with no ticks disables the
// instrument for the session; other instruments are unaffected.
func (w *worker) freezeCapture() bool {
	candle, err := w.capture.Freeze()
	if err != nil {
		w.phase = phaseDisabled
		w.logger.Error().Err(err).Msg("Opening range capture failed, instrument disabled")
		w.emitEvent(models.TradeEvent{
			Type:      models.EventDisabled,
			Symbol:    w.instrument.Symbol,
			Detail:    err.Error(),
			Timestamp: w.session.CaptureWindowEnd(),
		})
		return false
	}

	level, err := Levels(candle, w.cfg.Trading.RiskManagement.BreakoutBuffer)
	if err != nil {
		w.phase = phaseDisabled
		w.logger.Error().Err(err).Msg("Breakout level computation failed, instrument disabled")
		return false
	}
	w.level = level
	w.aggregator = newCandleAggregator(w.instrument.Symbol, w.cfg.CaptureWindow(), candle.End)
	w.atr.AddCandle(candle)
	w.phase = phaseArmed

	w.logger.Info().
		Float64("high", candle.High).
		Float64("low", candle.Low).
		Float64("upper", level.Upper).
		Float64("lower", level.Lower).
		Msg("Opening range captured, breakout levels armed")
	return true
}

func (w *worker) tryEnter(t models.Tick) {
	signal, err := w.filters.Evaluate(w.level, FilterContext{Tick: t, Recent: w.recent})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAmbiguousSignal) {
			w.logger.Warn().Float64("price", t.Price).Msg("Both breakout levels breached, signal suppressed")
		}
		return
	}
	if signal == SignalNone || t.Price <= 0 {
		return
	}

	threshold := w.level.Upper
	if signal == SignalPut {
		threshold = w.level.Lower
	}
	maxPremium := w.cfg.Trading.RiskManagement.MaxEntryPremium
	if maxPremium > 0 && extensionPct(t.Price, threshold) > maxPremium {
		w.logger.Warn().
			Float64("price", t.Price).
			Float64("threshold", threshold).
			Msg("Breakout too extended past level, entry skipped")
		return
	}

	rm := w.cfg.Trading.RiskManagement
	stopDist := rm.StopLossPoints
	if rm.UseATRStopLoss {
		stopDist = w.atr.CurrentATR() * rm.ATRMultiplier
	}
	// Resolve the stop before consulting the governor: a doomed entry must
	// not consume a daily trade slot.
	if stopDist <= 0 {
		w.logger.Error().Float64("stop_distance", stopDist).Msg("Non-positive stop distance, entry skipped")
		return
	}
	params := PositionParams{
		StopDistance:    stopDist,
		TargetDistance:  rm.TargetPoints,
		MaxHolding:      time.Duration(rm.MaxHoldingMinutes) * time.Minute,
		TrailingEnabled: w.cfg.Trading.TrailingStop.Enabled,
		ActivationPct:   w.cfg.Trading.TrailingStop.ActivationPercentage,
		TrailPct:        w.cfg.Trading.TrailingStop.TrailingPercentage,
	}

	if err := w.governor.Admit(); err != nil {
		var limitErr *apperrors.LimitError
		if apperrors.As(err, &limitErr) {
			logging.LogRejection(w.logger, w.instrument.Symbol, limitErr.Rule, limitErr.Current, limitErr.Limit)
			w.emitEvent(models.TradeEvent{
				Type:      models.EventRejection,
				Symbol:    w.instrument.Symbol,
				Side:      signal.Side(),
				Price:     t.Price,
				Detail:    limitErr.Error(),
				Timestamp: t.Timestamp,
			})
		}
		return
	}

	pos, err := OpenPosition(w.instrument.Symbol, signal.Side(), t.Price, t.Timestamp, w.instrument.Quantity(), params, NewLadder(w.cfg.Trading.PartialExits))
	if err != nil {
		w.logger.Error().Err(err).Msg("Entry failed")
		return
	}
	w.position = pos
	w.phase = phaseInPosition

	logging.LogEntry(w.logger, pos.Symbol, string(pos.Side), pos.OriginalQty, pos.EntryPrice, pos.StopLoss, pos.Target)
	w.emitIntent(models.OrderIntent{
		Symbol:    pos.Symbol,
		Side:      pos.Side,
		Action:    models.ActionEnter,
		Quantity:  pos.OriginalQty,
		PriceHint: pos.EntryPrice,
		Timestamp: t.Timestamp,
	})
	w.emitEvent(models.TradeEvent{
		Type:      models.EventEntry,
		Symbol:    pos.Symbol,
		Side:      pos.Side,
		Quantity:  pos.OriginalQty,
		Price:     pos.EntryPrice,
		Timestamp: t.Timestamp,
	})
}

func (w *worker) applyUpdate(price float64, now time.Time) {
	res, err := w.position.Update(price, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("Position update failed")
		return
	}

	switch {
	case res.Closed:
		w.finishPosition(price, now, res.Reason)
	case res.Trigger == TriggerLadder:
		pos := w.position
		logging.LogPartialExit(w.logger, pos.Symbol, res.ExitQuantity, price, pos.ProfitPct(price))
		w.emitIntent(models.OrderIntent{
			Symbol:    pos.Symbol,
			Side:      pos.Side,
			Action:    models.ActionPartialExit,
			Quantity:  res.ExitQuantity,
			PriceHint: price,
			Reason:    models.ExitReasonLadder,
			Timestamp: now,
		})
		w.emitEvent(models.TradeEvent{
			Type:      models.EventPartialExit,
			Symbol:    pos.Symbol,
			Side:      pos.Side,
			Quantity:  res.ExitQuantity,
			Price:     price,
			Reason:    models.ExitReasonLadder,
			Timestamp: now,
		})
	case res.StopMoved:
		w.logger.Debug().
			Float64("stop_loss", w.position.StopLoss).
			Float64("price", price).
			Msg("Trailing stop advanced")
	}
}

// sessionClose squares off any open position and retires the worker.
func (w *worker) sessionClose(price float64, now time.Time, reason models.ExitReason) {
	if w.phase == phaseInPosition && w.position != nil {
		if _, err := w.position.ForceClose(price, now, reason); err == nil {
			w.finishPosition(price, now, reason)
		}
	}
	w.phase = phaseDone
	w.logger.Info().Msg("Session closed")
}

// finishPosition settles a terminal close: governor update, audit events,
// journal record, then re-arm for a possible re-entry.
func (w *worker) finishPosition(price float64, now time.Time, reason models.ExitReason) {
	pos := w.position
	qty := pos.OriginalQty
	for _, pe := range pos.partials {
		qty -= pe.Quantity
	}

	w.governor.Settle(pos.RealizedPnL())
	logging.LogExit(w.logger, pos.Symbol, string(reason), price, pos.RealizedPnL())

	w.emitIntent(models.OrderIntent{
		Symbol:    pos.Symbol,
		Side:      pos.Side,
		Action:    models.ActionFullExit,
		Quantity:  qty,
		PriceHint: price,
		Reason:    reason,
		Timestamp: now,
	})
	w.emitEvent(models.TradeEvent{
		Type:      models.EventExit,
		Symbol:    pos.Symbol,
		Side:      pos.Side,
		Quantity:  qty,
		Price:     price,
		Reason:    reason,
		PnL:       pos.RealizedPnL(),
		Timestamp: now,
	})

	w.tradeSeq++
	id := fmt.Sprintf("%s-%s-%d", pos.Symbol, pos.EntryTime.Format("20060102"), w.tradeSeq)
	if rec, err := pos.Record(id, w.isPaper); err == nil {
		w.emitTrade(rec)
	}

	w.position = nil
	w.phase = phaseArmed
}

func (w *worker) pushRecent(t models.Tick) {
	w.recent = append(w.recent, t)
	if len(w.recent) > recentTickWindow {
		w.recent = w.recent[1:]
	}
}

func (w *worker) emitIntent(in models.OrderIntent) {
	select {
	case w.intents <- in:
	default:
		w.logger.Error().Str("action", string(in.Action)).Msg("Intent queue full, intent dropped")
	}
}

func (w *worker) emitEvent(ev models.TradeEvent) {
	select {
	case w.audit <- ev:
	default:
		w.logger.Warn().Str("type", string(ev.Type)).Msg("Audit queue full, event dropped")
	}
}

func (w *worker) emitTrade(rec models.TradeRecord) {
	select {
	case w.trades <- rec:
	default:
		w.logger.Warn().Str("trade", rec.ID).Msg("Trade queue full, record dropped")
	}
}

// extensionPct measures how far past the breakout threshold the price has
// run, as a percentage of the threshold.
func extensionPct(price, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	d := price - threshold
	if d < 0 {
		d = -d
	}
	return d / threshold * 100
}
