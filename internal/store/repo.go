package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for profiles, medicines, settings and reminders.
type Repo interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)

	CurrentMedicine(ctx context.Context, chatID int64) (*domain.Medicine, error)
	ListMedicines(ctx context.Context, chatID int64) ([]domain.Medicine, error)
	ReplaceCurrentMedicine(ctx context.Context, m *domain.Medicine) error

	// BeginSave opens a transaction scoped to one profile save.
	BeginSave(ctx context.Context) (SaveTx, error)

	GetString(ctx context.Context, chatID int64, key string) (string, error)
	SetString(ctx context.Context, chatID int64, key, value string) error
	SetObject(ctx context.Context, chatID int64, key string, value any) error

	ScheduleReminder(ctx context.Context, chatID int64, anchor, fireAt time.Time) error
	UnscheduleReminder(ctx context.Context, chatID int64) error
	GetReminder(ctx context.Context, chatID int64) (*domain.Reminder, error)
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)
	MarkReminderSent(ctx context.Context, chatID int64, sentAt, next time.Time) error

	Close() error
}

// SaveTx groups the writes of a profile save. Nothing is visible to other
// readers until Commit. Rollback after Commit is a no-op, so callers can
// always defer it.
type SaveTx interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	UpdateMedicineStock(ctx context.Context, id uuid.UUID, stock float64, refill time.Time) error
	SetString(ctx context.Context, chatID int64, key, value string) error
	Commit() error
	Rollback() error
}
