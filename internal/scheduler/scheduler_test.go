package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/store"
)

type fakeSender struct {
	sent []int64
	err  error
}

func (f *fakeSender) SendReminder(chatID int64, _ domain.Medicine) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

type fakeMailer struct{ to []string }

func (f *fakeMailer) SendReminder(_ context.Context, u domain.User, _ domain.Medicine) error {
	f.to = append(f.to, u.Email)
	return nil
}

func openRepo(t *testing.T) *store.SQLiteRepo {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestPlanner_ScheduleTwiceEqualsOnce(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	p := NewPlanner(repo, Options{Repeat: 24 * time.Hour})
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := p.ScheduleNotification(ctx, 1, now); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	rem, err := repo.GetReminder(ctx, 1)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if !rem.FireAt.Equal(now) || !rem.AnchorAt.Equal(now) {
		t.Fatalf("unexpected reminder %+v", rem)
	}

	for i := 0; i < 2; i++ {
		if err := p.UnscheduleNotification(ctx, 1); err != nil {
			t.Fatalf("unschedule #%d: %v", i, err)
		}
	}
	if _, err := repo.GetReminder(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTick_SendsAndRearms(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	med := domain.NewMedicine(7, domain.Presets[0], 3, now)
	if err := repo.ReplaceCurrentMedicine(ctx, &med); err != nil {
		t.Fatalf("medicine: %v", err)
	}
	tx, err := repo.BeginSave(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.UpsertUser(ctx, &domain.User{ChatID: 7, FirstName: "A", LastName: "B", Age: 30, Email: "a@b.com"}); err != nil {
		t.Fatalf("user: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	planner := NewPlanner(repo, Options{Repeat: 24 * time.Hour})
	if err := planner.ScheduleNotification(ctx, 7, now); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	sender := &fakeSender{}
	mailer := &fakeMailer{}
	s := New(repo, planner, zap.NewNop(), sender, mailer)
	s.now = func() time.Time { return now }

	s.tick(ctx)
	if len(sender.sent) != 1 || sender.sent[0] != 7 {
		t.Fatalf("unexpected sends %v", sender.sent)
	}
	if len(mailer.to) != 1 || mailer.to[0] != "a@b.com" {
		t.Fatalf("unexpected mails %v", mailer.to)
	}

	rem, err := repo.GetReminder(ctx, 7)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if want := now.Add(24 * time.Hour); !rem.FireAt.Equal(want) {
		t.Fatalf("want next fire %v, got %v", want, rem.FireAt)
	}

	// A second tick at the same instant has nothing to do.
	s.tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("reminder sent twice: %v", sender.sent)
	}

	// Re-anchoring right after a send does not bring the reminder forward.
	if err := planner.ScheduleNotification(ctx, 7, now.Add(time.Minute)); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	rem, _ = repo.GetReminder(ctx, 7)
	if want := now.Add(24 * time.Hour); !rem.FireAt.Equal(want) {
		t.Fatalf("want fire %v after re-anchor, got %v", want, rem.FireAt)
	}
}

func TestTick_SendFailureKeepsReminderDue(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	med := domain.NewMedicine(3, domain.Presets[2], 1, now)
	if err := repo.ReplaceCurrentMedicine(ctx, &med); err != nil {
		t.Fatalf("medicine: %v", err)
	}
	planner := NewPlanner(repo, Options{})
	if err := planner.ScheduleNotification(ctx, 3, now); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	s := New(repo, planner, zap.NewNop(), &fakeSender{err: errors.New("telegram down")}, nil)
	s.now = func() time.Time { return now }
	s.tick(ctx)

	due, err := repo.ListDueReminders(ctx, now, 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("reminder should still be due, got %+v", due)
	}
}

func TestTick_DropsReminderWithoutMedicine(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t)
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	planner := NewPlanner(repo, Options{})
	if err := planner.ScheduleNotification(ctx, 9, now); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	sender := &fakeSender{}
	s := New(repo, planner, zap.NewNop(), sender, nil)
	s.now = func() time.Time { return now }
	s.tick(ctx)

	if len(sender.sent) != 0 {
		t.Fatalf("nothing should be sent, got %v", sender.sent)
	}
	if _, err := repo.GetReminder(ctx, 9); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
