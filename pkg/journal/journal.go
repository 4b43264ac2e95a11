package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS spend_events (
	id          TEXT PRIMARY KEY,
	entity      TEXT NOT NULL,
	amount      REAL NOT NULL,
	exceeded    INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spend_events_entity ON spend_events(entity, recorded_at);
CREATE INDEX IF NOT EXISTS idx_spend_events_recorded_at ON spend_events(recorded_at);
`

// Event is one journaled spend record.
type Event struct {
	// ID is a generated UUID.
	ID string

	// Entity is the tracked entity the spend was recorded against.
	Entity string

	// Amount is the recorded spend.
	Amount float64

	// Exceeded is the admission decision returned for this spend.
	Exceeded bool

	// RecordedAt is when the event was journaled (UTC).
	RecordedAt time.Time
}

// Config contains configuration for the journal.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool
}

// DefaultConfig returns the default journal configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/spendgate.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
		WALMode:      true,
	}
}

// Journal is an append-only spend event store backed by SQLite.
// It is safe for concurrent use.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the journal database and initializes
// its schema.
func Open(cfg *Config) (*Journal, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database %q: %w", cfg.Path, err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)

	j := &Journal{
		db:     db,
		logger: slog.Default().With("component", "journal"),
	}

	if err := j.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	j.logger.Info("journal opened", "path", cfg.Path, "wal_mode", cfg.WALMode)

	return j, nil
}

// initialize applies pragmas and creates the schema.
func (j *Journal) initialize(cfg *Config) error {
	if cfg.WALMode {
		if _, err := j.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := j.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}

	return nil
}

// Append journals one spend event. It satisfies admission.SpendJournal.
func (j *Journal) Append(ctx context.Context, entity string, amount float64, exceeded bool) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO spend_events (id, entity, amount, exceeded, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), entity, amount, exceeded, time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append spend event for %q: %w", entity, err)
	}
	return nil
}

// Recent returns up to limit events for an entity, newest first.
func (j *Journal) Recent(ctx context.Context, entity string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, entity, amount, exceeded, recorded_at
		 FROM spend_events WHERE entity = ?
		 ORDER BY recorded_at DESC LIMIT ?`,
		entity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query spend events for %q: %w", entity, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev    Event
			nanos int64
		)
		if err := rows.Scan(&ev.ID, &ev.Entity, &ev.Amount, &ev.Exceeded, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan spend event: %w", err)
		}
		ev.RecordedAt = time.Unix(0, nanos).UTC()
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Prune deletes events recorded before the cutoff and returns the number
// deleted.
func (j *Journal) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM spend_events WHERE recorded_at < ?`,
		olderThan.UTC().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune spend events: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned events: %w", err)
	}

	if deleted > 0 {
		j.logger.Debug("pruned spend events", "deleted", deleted, "older_than", olderThan)
	}

	return int(deleted), nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
