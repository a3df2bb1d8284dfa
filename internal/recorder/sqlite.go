package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"CryptoTracker/internal/model"
)

// SQLiteRecorder persists the journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			asset       TEXT NOT NULL,
			type        TEXT NOT NULL,
			price       TEXT NOT NULL,
			quantity    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_ts ON transactions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS valuations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			total_value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuation_ts ON valuations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS holdings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			valuation_id   INTEGER NOT NULL REFERENCES valuations(id),
			asset          TEXT NOT NULL,
			quantity       TEXT NOT NULL,
			avg_buy_price  TEXT NOT NULL,
			price          TEXT,
			market_value   TEXT,
			unrealized_pnl TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holdings_valuation ON holdings(valuation_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTransaction(tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := tx.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO transactions
		(id, timestamp, asset, type, price, quantity)
		VALUES (?,?,?,?,?,?)`,
		tx.ID, ts.Unix(), string(tx.Asset), string(tx.Type),
		tx.Price.String(), tx.Quantity.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordValuation(v *model.Valuation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := v.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	dbtx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	res, err := dbtx.Exec(`INSERT INTO valuations (timestamp, total_value) VALUES (?,?)`,
		ts.Unix(), v.TotalValue.String())
	if err != nil {
		dbtx.Rollback()
		return fmt.Errorf("insert valuation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		dbtx.Rollback()
		return fmt.Errorf("valuation id: %w", err)
	}

	for _, h := range v.Holdings {
		var price, value, pnl sql.NullString
		if h.Priced {
			price = sql.NullString{String: h.Price.String(), Valid: true}
			value = sql.NullString{String: h.MarketValue.String(), Valid: true}
			pnl = sql.NullString{String: h.UnrealizedPnL.String(), Valid: true}
		}
		if _, err := dbtx.Exec(`INSERT INTO holdings
			(valuation_id, asset, quantity, avg_buy_price, price, market_value, unrealized_pnl)
			VALUES (?,?,?,?,?,?,?)`,
			id, string(h.Asset), h.Quantity.String(), h.AvgBuyPrice.String(),
			price, value, pnl,
		); err != nil {
			dbtx.Rollback()
			return fmt.Errorf("insert holding %s: %w", h.Asset, err)
		}
	}
	return dbtx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
