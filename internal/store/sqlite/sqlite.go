package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tipjar/internal/core"
	"tipjar/internal/store"
)

const profileKey = "creator_profile"

// Store is the durable RecordRepository/ProfileRepository over SQLite.
// Capacity eviction runs inside the Append transaction so the history
// never exceeds the limit between calls.
type Store struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

func New(dbPath string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, limit: limit, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append inserts the finalized record and evicts everything beyond the
// retained limit, oldest first.
func (s *Store) Append(ctx context.Context, draft core.RecordDraft) (*core.Record, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	rec := core.Record{
		ID:        uuid.NewString(),
		Hash:      draft.Hash,
		Amount:    draft.Amount,
		From:      draft.From,
		Recipient: draft.Recipient,
		Message:   draft.Message,
		Status:    draft.Status,
		Timestamp: s.now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tips (id, hash, amount, sender, recipient, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Hash, rec.Amount.String(), rec.From, rec.Recipient,
		rec.Message, string(rec.Status), rec.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert tip: %w", err)
	}

	// rowid breaks ties between records stored within the same instant.
	_, err = tx.ExecContext(ctx,
		`DELETE FROM tips WHERE id NOT IN
		 (SELECT id FROM tips ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
		s.limit)
	if err != nil {
		return nil, fmt.Errorf("evict old tips: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}

	slog.InfoContext(ctx, "Tip saved",
		"id", rec.ID,
		"amount", rec.Amount.String(),
		"from", rec.From,
		"status", rec.Status)

	return &rec, nil
}

func (s *Store) List(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hash, amount, sender, recipient, message, status, created_at
		 FROM tips ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return records, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tips`); err != nil {
		return fmt.Errorf("clear tips: %w", err)
	}
	slog.InfoContext(ctx, "Tip history cleared")
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, hash, amount, sender, recipient, message, status, created_at
		 FROM tips WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var rec core.Record
	var amount, status, createdAt string
	err := row.Scan(&rec.ID, &rec.Hash, &amount, &rec.From, &rec.Recipient,
		&rec.Message, &status, &createdAt)
	if err != nil {
		return core.Record{}, err
	}
	rec.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	rec.Status = core.Status(status)
	rec.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse stored timestamp %q: %w", createdAt, err)
	}
	return rec, nil
}

func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = s.now().UTC()
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		profileKey, string(blob), p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) LoadProfile(ctx context.Context) (core.Profile, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, profileKey).Scan(&blob)
	if err == sql.ErrNoRows {
		return core.DefaultProfile(), nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	var p core.Profile
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return core.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func (s *Store) ClearProfile(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, profileKey); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
