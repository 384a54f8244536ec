package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.BarCache using SQLite. Rows carry the time they
// were fetched; anything older than the caller's maxAge is a miss.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

var _ ports.BarCache = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/market_cache.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One writer; the scan workers serialise through the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger, now: time.Now}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS quote_snapshots (
		seq INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		change_pct REAL NOT NULL,
		pe REAL NOT NULL,
		pb REAL NOT NULL,
		turnover REAL NOT NULL,
		market_cap REAL NOT NULL,
		volume_ratio REAL NOT NULL,
		industry TEXT NOT NULL,
		fetched_at INTEGER NOT NULL -- unix nanoseconds
	);

	CREATE TABLE IF NOT EXISTS price_bars (
		symbol TEXT NOT NULL,
		days INTEGER NOT NULL,
		bar_date INTEGER NOT NULL, -- unix seconds
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (symbol, days, bar_date)
	);
	CREATE INDEX IF NOT EXISTS idx_quote_snapshots_fetched_at ON quote_snapshots (fetched_at);
	CREATE INDEX IF NOT EXISTS idx_price_bars_fetched_at ON price_bars (fetched_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

func queryErr(op string, err error) error {
	return fmt.Errorf("%s failed: %w: %w", op, ports.ErrQueryFailed, err)
}

// SaveSnapshot replaces the cached snapshot.
func (r *Repository) SaveSnapshot(ctx context.Context, quotes []*domain.MarketQuote) error {
	const op = "SaveSnapshot"
	const insert = `
	INSERT INTO quote_snapshots (seq, symbol, name, price, change_pct, pe, pb, turnover,
	                             market_cap, volume_ratio, industry, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return queryErr(op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_snapshots`); err != nil {
		return queryErr(op, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return queryErr(op, err)
	}
	defer stmt.Close()

	fetchedAt := r.now().UnixNano()
	for i, q := range quotes {
		if _, err := stmt.ExecContext(ctx, i, q.Symbol, q.Name, q.Price, q.ChangePct, q.PE, q.PB,
			q.Turnover, q.MarketCap, q.VolumeRatio, q.Industry, fetchedAt); err != nil {
			return queryErr(op, fmt.Errorf("symbol %s: %w", q.Symbol, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return queryErr(op, err)
	}
	r.logger.Debug(ctx, "Snapshot cached", map[string]interface{}{"count": len(quotes)})
	return nil
}

// LoadSnapshot returns the cached snapshot in its original order.
func (r *Repository) LoadSnapshot(ctx context.Context, maxAge time.Duration) ([]*domain.MarketQuote, error) {
	const op = "LoadSnapshot"
	const query = `
	SELECT symbol, name, price, change_pct, pe, pb, turnover, market_cap, volume_ratio, industry
	FROM quote_snapshots
	WHERE fetched_at >= ?
	ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, r.now().Add(-maxAge).UnixNano())
	if err != nil {
		return nil, queryErr(op, err)
	}
	defer rows.Close()

	quotes := make([]*domain.MarketQuote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, queryErr(op, err)
		}
		quotes = append(quotes, q)
	}
	if err = rows.Err(); err != nil {
		return nil, queryErr(op, err)
	}
	if len(quotes) == 0 {
		return nil, ports.ErrCacheMiss
	}
	return quotes, nil
}

// SaveHistory replaces the cached bars of one symbol/window.
func (r *Repository) SaveHistory(ctx context.Context, symbol string, days int, bars []*domain.PriceBar) error {
	const op = "SaveHistory"
	const insert = `
	INSERT OR REPLACE INTO price_bars (symbol, days, bar_date, open, high, low, close, volume, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return queryErr(op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_bars WHERE symbol = ? AND days = ?`, symbol, days); err != nil {
		return queryErr(op, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return queryErr(op, err)
	}
	defer stmt.Close()

	fetchedAt := r.now().UnixNano()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, days, b.Date.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume, fetchedAt); err != nil {
			return queryErr(op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return queryErr(op, err)
	}
	r.logger.Debug(ctx, "History cached", map[string]interface{}{"symbol": symbol, "days": days, "count": len(bars)})
	return nil
}

// LoadHistory returns the cached bars of one symbol/window, ascending by date.
func (r *Repository) LoadHistory(ctx context.Context, symbol string, days int, maxAge time.Duration) ([]*domain.PriceBar, error) {
	const op = "LoadHistory"
	const query = `
	SELECT symbol, bar_date, open, high, low, close, volume
	FROM price_bars
	WHERE symbol = ? AND days = ? AND fetched_at >= ?
	ORDER BY bar_date`

	rows, err := r.db.QueryContext(ctx, query, symbol, days, r.now().Add(-maxAge).UnixNano())
	if err != nil {
		return nil, queryErr(op, err)
	}
	defer rows.Close()

	bars := make([]*domain.PriceBar, 0)
	for rows.Next() {
		b, err := scanBar(rows)
		if err != nil {
			return nil, queryErr(op, err)
		}
		bars = append(bars, b)
	}
	if err = rows.Err(); err != nil {
		return nil, queryErr(op, err)
	}
	if len(bars) == 0 {
		return nil, ports.ErrCacheMiss
	}
	return bars, nil
}

// Purge deletes rows fetched more than olderThan ago and reports how many went.
func (r *Repository) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	const op = "Purge"
	cutoff := r.now().Add(-olderThan).UnixNano()

	var total int64
	for _, table := range []string{"quote_snapshots", "price_bars"} {
		res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return total, queryErr(op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, queryErr(op, err)
		}
		total += n
	}
	r.logger.Info(ctx, "Expired cache rows purged", map[string]interface{}{"rows": total})
	return total, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(s scanner) (*domain.MarketQuote, error) {
	q := &domain.MarketQuote{}
	err := s.Scan(&q.Symbol, &q.Name, &q.Price, &q.ChangePct, &q.PE, &q.PB,
		&q.Turnover, &q.MarketCap, &q.VolumeRatio, &q.Industry)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func scanBar(s scanner) (*domain.PriceBar, error) {
	b := &domain.PriceBar{}
	var date int64
	err := s.Scan(&b.Symbol, &date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if err != nil {
		return nil, err
	}
	b.Date = time.Unix(date, 0).UTC()
	return b, nil
}
