package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "orb-trader/internal/errors"
	"orb-trader/internal/models"
)

// SQLiteJournal implements Journal on a local SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) the journal database.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrap(err, "opening journal database")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "initializing journal schema")
	}
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_time DATETIME NOT NULL,
		entry_price REAL NOT NULL,
		exit_time DATETIME NOT NULL,
		exit_price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		pnl REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		partial_exits TEXT,
		max_up REAL,
		max_down REAL,
		hold_duration INTEGER,
		is_paper INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trade_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT,
		quantity INTEGER,
		price REAL,
		reason TEXT,
		pnl REAL,
		detail TEXT,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);
	CREATE INDEX IF NOT EXISTS idx_events_symbol_ts ON trade_events(symbol, timestamp);
	`
	_, err := j.db.Exec(schema)
	return err
}

// SaveEvent appends one lifecycle event.
func (j *SQLiteJournal) SaveEvent(ctx context.Context, ev models.TradeEvent) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trade_events (type, symbol, side, quantity, price, reason, pnl, detail, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(ev.Type), ev.Symbol, string(ev.Side), ev.Quantity, ev.Price,
		string(ev.Reason), ev.PnL, ev.Detail, ev.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "saving trade event")
	}
	return nil
}

// SaveTrade persists one completed trade.
func (j *SQLiteJournal) SaveTrade(ctx context.Context, rec models.TradeRecord) error {
	partials, err := json.Marshal(rec.PartialExits)
	if err != nil {
		return apperrors.Wrap(err, "encoding partial exits")
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades
		(id, symbol, side, entry_time, entry_price, exit_time, exit_price,
		 quantity, pnl, exit_reason, partial_exits, max_up, max_down, hold_duration, is_paper)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Symbol, string(rec.Side), rec.EntryTime, rec.EntryPrice,
		rec.ExitTime, rec.ExitPrice, rec.Quantity, rec.PnL, string(rec.ExitReason),
		string(partials), rec.MaxUp, rec.MaxDown, int64(rec.HoldDuration/time.Second), boolToInt(rec.IsPaper),
	)
	if err != nil {
		return apperrors.Wrap(err, "saving trade")
	}
	return nil
}

// Trades returns completed trades matching the filter, newest first.
func (j *SQLiteJournal) Trades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := `
		SELECT id, symbol, side, entry_time, entry_price, exit_time, exit_price,
		       quantity, pnl, exit_reason, partial_exits, max_up, max_down, hold_duration, is_paper
		FROM trades WHERE 1=1`
	args := []interface{}{}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.Since.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.Since)
	}
	query += " ORDER BY entry_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "querying trades")
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var rec models.TradeRecord
		var side, reason, partials string
		var holdSeconds int64
		var isPaper int
		if err := rows.Scan(&rec.ID, &rec.Symbol, &side, &rec.EntryTime, &rec.EntryPrice,
			&rec.ExitTime, &rec.ExitPrice, &rec.Quantity, &rec.PnL, &reason,
			&partials, &rec.MaxUp, &rec.MaxDown, &holdSeconds, &isPaper); err != nil {
			return nil, apperrors.Wrap(err, "scanning trade row")
		}
		rec.Side = models.OptionSide(side)
		rec.ExitReason = models.ExitReason(reason)
		rec.HoldDuration = time.Duration(holdSeconds) * time.Second
		rec.IsPaper = isPaper != 0
		if partials != "" {
			if err := json.Unmarshal([]byte(partials), &rec.PartialExits); err != nil {
				return nil, apperrors.Wrap(err, "decoding partial exits")
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DailyPnL returns the realized P&L and trade count for one calendar day.
func (j *SQLiteJournal) DailyPnL(ctx context.Context, day time.Time) (float64, int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var pnl sql.NullFloat64
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(pnl), 0), COUNT(*) FROM trades
		WHERE entry_time >= ? AND entry_time < ?`, start, end,
	).Scan(&pnl, &count)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "querying daily pnl")
	}
	return pnl.Float64, count, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
