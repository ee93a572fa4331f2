package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

// billsTable carries a version suffix. Changing the record schema means
// bumping the suffix and adding a migration; rows under a stale name are
// simply invisible, not migrated.
const billsTable = "bills_v5"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens sqlite with sensible defaults.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// Migrate applies all embedded up migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// SQLite persists the full record set to one sqlite table. SaveAll rewrites
// the table in a single transaction; at hundreds of records that beats
// incremental bookkeeping.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSQLite(db *sql.DB, log zerolog.Logger) *SQLite {
	return &SQLite{db: db, log: log}
}

// Load reads the stored record set. The caller starts empty on error.
func (s *SQLite) Load(ctx context.Context) ([]ledger.BillRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, party_name, amount, date_iso, items, image_ref, created_at, category, state
	FROM `+billsTable+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var out []ledger.BillRecord
	for rows.Next() {
		var r ledger.BillRecord
		var amount, dateISO, createdAt, category, state string
		var items, imageRef sql.NullString
		if err := rows.Scan(&r.ID, &r.PartyName, &amount, &dateISO, &items, &imageRef, &createdAt, &category, &state); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bill %s amount: %w", r.ID, err)
		}
		if r.Date, err = time.ParseInLocation(time.DateOnly, dateISO, time.UTC); err != nil {
			return nil, fmt.Errorf("bill %s date: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("bill %s created_at: %w", r.ID, err)
		}
		if items.Valid && items.String != "" {
			if err := json.Unmarshal([]byte(items.String), &r.Items); err != nil {
				return nil, fmt.Errorf("bill %s items: %w", r.ID, err)
			}
		}
		r.ImageRef = imageRef.String
		r.Category = ledger.Category(category)
		r.State = ledger.State(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveAll replaces the stored set with the given one.
func (s *SQLite) SaveAll(ctx context.Context, records []ledger.BillRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+billsTable); err != nil {
		return fmt.Errorf("clear bills: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO `+billsTable+`(id, party_name, amount, date_iso, items, image_ref, created_at, category, state)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var items any
		if len(r.Items) > 0 {
			b, err := json.Marshal(r.Items)
			if err != nil {
				return fmt.Errorf("bill %s items: %w", r.ID, err)
			}
			items = string(b)
		}
		var imageRef any
		if r.ImageRef != "" {
			imageRef = r.ImageRef
		}
		_, err := stmt.ExecContext(ctx,
			r.ID, r.PartyName, r.Amount.String(), ledger.DateKey(r.Date),
			items, imageRef, r.CreatedAt.UTC().Format(time.RFC3339),
			string(r.Category), string(r.State))
		if err != nil {
			return fmt.Errorf("insert bill %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug().Int("count", len(records)).Msg("bills saved")
	return nil
}
