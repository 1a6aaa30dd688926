package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

var _ Repo = (*SQLiteRepo)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Users ---

// GetUser returns the profile of a chat or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, first_name, last_name, gender, age, email,
		       location, phone, created_at, updated_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)

	var (
		u         domain.User
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&u.ChatID, &u.FirstName, &u.LastName, &u.Gender, &u.Age, &u.Email,
		&u.Location, &u.Phone, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = fromUnix(createdAt)
	u.UpdatedAt = fromUnix(updatedAt)
	return &u, nil
}

// upsertUser inserts or updates a profile. created_at is kept on update.
func upsertUser(ctx context.Context, db execer, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	now := time.Now().UTC().Unix()
	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = now
	}
	updated := u.UpdatedAt.UTC().Unix()
	if u.UpdatedAt.IsZero() {
		updated = now
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (
			chat_id, first_name, last_name, gender, age, email,
			location, phone, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			gender     = excluded.gender,
			age        = excluded.age,
			email      = excluded.email,
			location   = excluded.location,
			phone      = excluded.phone,
			updated_at = excluded.updated_at`,
		u.ChatID, u.FirstName, u.LastName, u.Gender, u.Age, u.Email,
		u.Location, u.Phone, created, updated,
	)
	return err
}

// --- Medicines ---

const medicineColumns = `id, chat_id, name, interval_days, current_stock, last_stock_refill, created_at`

func scanMedicine(s rowScanner) (domain.Medicine, error) {
	var (
		m         domain.Medicine
		id        string
		refill    sql.NullInt64
		createdAt int64
	)
	if err := s.Scan(&id, &m.ChatID, &m.Name, &m.IntervalDays, &m.CurrentStock, &refill, &createdAt); err != nil {
		return domain.Medicine{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("medicine id %q: %w", id, err)
	}
	m.ID = parsed
	m.LastStockRefill = fromNullInt64(refill)
	m.CreatedAt = fromUnix(createdAt)
	return m, nil
}

// CurrentMedicine returns the most recently configured medicine of a chat.
func (r *SQLiteRepo) CurrentMedicine(ctx context.Context, chatID int64) (*domain.Medicine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE chat_id = ? AND is_current = 1
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
		chatID,
	)
	m, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListMedicines returns the active medicines of a chat, oldest first.
func (r *SQLiteRepo) ListMedicines(ctx context.Context, chatID int64) ([]domain.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE chat_id = ? AND is_current = 1
		ORDER BY created_at ASC, rowid ASC`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ReplaceCurrentMedicine retires the chat's active medicines and stores m
// as the new current one.
func (r *SQLiteRepo) ReplaceCurrentMedicine(ctx context.Context, m *domain.Medicine) error {
	if m == nil {
		return errors.New("nil medicine")
	}
	if m.IntervalDays <= 0 {
		return fmt.Errorf("medicine %q: interval must be positive", m.Name)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE medicines SET is_current = 0 WHERE chat_id = ?`,
		m.ChatID,
	); err != nil {
		return err
	}

	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`, is_current)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		m.ID.String(), m.ChatID, m.Name, m.IntervalDays, m.CurrentStock,
		toNullInt64(m.LastStockRefill), created.UTC().Unix(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func updateMedicineStock(ctx context.Context, db execer, id uuid.UUID, stock float64, refill time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE medicines
		SET current_stock = ?, last_stock_refill = ?
		WHERE id = ?`,
		stock, refill.UTC().Unix(), id.String(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("medicine %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Settings ---

// GetString returns a chat setting, or "" when it was never set.
func (r *SQLiteRepo) GetString(ctx context.Context, chatID int64, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE chat_id = ? AND key = ?`,
		chatID, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetString stores a chat setting.
func (r *SQLiteRepo) SetString(ctx context.Context, chatID int64, key, value string) error {
	return setString(ctx, r.db, chatID, key, value)
}

// SetObject stores a JSON-encoded chat setting.
func (r *SQLiteRepo) SetObject(ctx context.Context, chatID int64, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return setString(ctx, r.db, chatID, key, string(b))
}

func setString(ctx context.Context, db execer, chatID int64, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (chat_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at`,
		chatID, key, value, time.Now().UTC().Unix(),
	)
	return err
}

// --- Reminders ---

// ScheduleReminder arms (or re-arms) the chat's stock reminder. The
// previous delivery time is kept so repeats can be spaced out.
func (r *SQLiteRepo) ScheduleReminder(ctx context.Context, chatID int64, anchor, fireAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (chat_id, anchor_at, fire_at, last_sent_at)
		VALUES (?, ?, ?, NULL)
		ON CONFLICT(chat_id) DO UPDATE SET
			anchor_at = excluded.anchor_at,
			fire_at   = excluded.fire_at`,
		chatID, anchor.UTC().Unix(), fireAt.UTC().Unix(),
	)
	return err
}

// UnscheduleReminder removes a pending reminder. Missing rows are not an error.
func (r *SQLiteRepo) UnscheduleReminder(ctx context.Context, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE chat_id = ?`, chatID)
	return err
}

func scanReminder(s rowScanner) (domain.Reminder, error) {
	var (
		rem      domain.Reminder
		anchorAt int64
		fireAt   int64
		lastNS   sql.NullInt64
	)
	if err := s.Scan(&rem.ChatID, &anchorAt, &fireAt, &lastNS); err != nil {
		return domain.Reminder{}, err
	}
	rem.AnchorAt = fromUnix(anchorAt)
	rem.FireAt = fromUnix(fireAt)
	rem.LastSentAt = fromNullInt64(lastNS)
	return rem, nil
}

// GetReminder returns the pending reminder of a chat or ErrNotFound.
func (r *SQLiteRepo) GetReminder(ctx context.Context, chatID int64) (*domain.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, anchor_at, fire_at, last_sent_at
		FROM reminders
		WHERE chat_id = ?`,
		chatID,
	)
	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rem, nil
}

// ListDueReminders returns up to `limit` reminders whose fire_at is <= now.
// Results are ordered by fire_at ascending.
func (r *SQLiteRepo) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, anchor_at, fire_at, last_sent_at
		FROM reminders
		WHERE fire_at <= ?
		ORDER BY fire_at ASC
		LIMIT ?`,
		now.UTC().Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// MarkReminderSent records a delivery and moves fire_at to next.
func (r *SQLiteRepo) MarkReminderSent(ctx context.Context, chatID int64, sentAt, next time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET last_sent_at = ?, fire_at = ?
		WHERE chat_id = ?`,
		sentAt.UTC().Unix(), next.UTC().Unix(), chatID,
	)
	return err
}

// --- Save transaction ---

type sqliteSaveTx struct {
	tx   *sql.Tx
	done bool
}

// BeginSave opens a transaction for one profile save.
func (r *SQLiteRepo) BeginSave(ctx context.Context) (SaveTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteSaveTx{tx: tx}, nil
}

func (t *sqliteSaveTx) UpsertUser(ctx context.Context, u *domain.User) error {
	return upsertUser(ctx, t.tx, u)
}

func (t *sqliteSaveTx) UpdateMedicineStock(ctx context.Context, id uuid.UUID, stock float64, refill time.Time) error {
	return updateMedicineStock(ctx, t.tx, id, stock, refill)
}

func (t *sqliteSaveTx) SetString(ctx context.Context, chatID int64, key, value string) error {
	return setString(ctx, t.tx, chatID, key, value)
}

func (t *sqliteSaveTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	return t.tx.Commit()
}

func (t *sqliteSaveTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}
