package store

import (
	"context"

	"github.com/rs/zerolog"

	"orb-trader/internal/models"
)

// AuditWriter adapts a Journal to the engine's audit boundary. Persistence
// failures are logged and swallowed so the trading path never depends on
// the database.
type AuditWriter struct {
	journal Journal
	logger  zerolog.Logger
}

// NewAuditWriter creates an audit writer over the journal.
func NewAuditWriter(journal Journal, logger zerolog.Logger) *AuditWriter {
	return &AuditWriter{journal: journal, logger: logger}
}

// RecordEvent persists one lifecycle event.
func (a *AuditWriter) RecordEvent(ev models.TradeEvent) {
	if err := a.journal.SaveEvent(context.Background(), ev); err != nil {
		a.logger.Error().Err(err).Str("type", string(ev.Type)).Msg("Failed to persist trade event")
	}
}

// RecordTrade persists one completed trade.
func (a *AuditWriter) RecordTrade(rec models.TradeRecord) {
	if err := a.journal.SaveTrade(context.Background(), rec); err != nil {
		a.logger.Error().Err(err).Str("trade", rec.ID).Msg("Failed to persist trade record")
	}
}
