// Package sqlite stores the ledger as rows of a SQLite table, one row per
// transaction in insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finvision/internal/core"
	"finvision/internal/ledger"

	_ "modernc.org/sqlite"
)

const DefaultPath = "./data/finvision.db"

type Store struct {
	db *sql.DB
}

// Ensure interface conformance
var _ ledger.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps inserts serialized within the process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const selectAll = `SELECT date, type, category, amount_cents, description FROM transactions ORDER BY id`

// Load reads every row. Rows that no longer validate make the whole table
// unusable for this load, mirroring a corrupt file.
func (s *Store) Load(ctx context.Context) (ledger.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	l := core.Ledger{}
	for rows.Next() {
		var date, typ, cat, desc string
		var cents int64
		if err := rows.Scan(&date, &typ, &cat, &cents, &desc); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("scan transaction: %w", err)
		}
		tx, err := decodeRow(date, typ, cat, cents, desc)
		if err != nil {
			slog.WarnContext(ctx, "Stored transaction could not be parsed, using empty ledger", "error", err)
			return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeUnreadable}, nil
		}
		l = append(l, tx)
	}
	if err := rows.Err(); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("iterate transactions: %w", err)
	}
	if len(l) == 0 {
		return ledger.Snapshot{Ledger: l, Notice: ledger.NoticeNoHistory}, nil
	}
	return ledger.Snapshot{Ledger: l}, nil
}

func decodeRow(date, typ, cat string, cents int64, desc string) (core.Transaction, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := core.ParseType(typ)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseCategory(cat)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.FromSigned(d, t, c, core.Money{Cents: cents}, desc)
}

// AppendAndSave inserts tx and returns the stored ledger. Rows already stored
// are not rewritten.
func (s *Store) AppendAndSave(ctx context.Context, l core.Ledger, tx core.Transaction) (core.Ledger, error) {
	if err := tx.Validate(); err != nil {
		return l, fmt.Errorf("validation failed: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (date, type, category, amount_cents, description) VALUES (?, ?, ?, ?, ?)`,
		tx.Date.String(), string(tx.Type), string(tx.Category), tx.Signed().Cents, tx.Description)
	if err != nil {
		return l, fmt.Errorf("insert transaction: %w", err)
	}
	id, _ := res.LastInsertId()

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"date", tx.Date.String(),
		"type", tx.Type,
		"category", tx.Category,
		"amount_cents", tx.Signed().Cents)

	snap, err := s.Load(ctx)
	if err != nil {
		// the row is committed; only the read back failed
		slog.WarnContext(ctx, "Reload after insert failed", "error", err)
		return l.Append(tx), nil
	}
	return snap.Ledger, nil
}
