package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/store"
)

// Sender delivers a stock reminder to a chat.
// telegram.Router implements this.
type Sender interface {
	SendReminder(chatID int64, m domain.Medicine) error
}

// Mailer sends an optional e-mail copy of a reminder.
type Mailer interface {
	SendReminder(ctx context.Context, u domain.User, m domain.Medicine) error
}

// Repo is the storage the scheduler needs.
type Repo interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	CurrentMedicine(ctx context.Context, chatID int64) (*domain.Medicine, error)
	ScheduleReminder(ctx context.Context, chatID int64, anchor, fireAt time.Time) error
	UnscheduleReminder(ctx context.Context, chatID int64) error
	GetReminder(ctx context.Context, chatID int64) (*domain.Reminder, error)
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]domain.Reminder, error)
	MarkReminderSent(ctx context.Context, chatID int64, sentAt, next time.Time) error
}

// Options control when reminders go out.
type Options struct {
	Poll   time.Duration // how often the due list is checked
	Repeat time.Duration // delay between repeats of an armed reminder
	Window domain.Window // delivery hours
}

// Planner arms and disarms reminders. It implements profile.Notifier.
type Planner struct {
	repo Repo
	opts Options
}

// NewPlanner creates a Planner.
func NewPlanner(repo Repo, opts Options) *Planner {
	if opts.Repeat <= 0 {
		opts.Repeat = 24 * time.Hour
	}
	return &Planner{repo: repo, opts: opts}
}

// ScheduleNotification arms the reminder anchored at `at`. Calling it again
// replaces the pending reminder; a recent delivery pushes the next one back
// by the repeat delay.
func (p *Planner) ScheduleNotification(ctx context.Context, chatID int64, at time.Time) error {
	var lastSent *time.Time
	rem, err := p.repo.GetReminder(ctx, chatID)
	switch {
	case err == nil:
		lastSent = rem.LastSentAt
	case !errors.Is(err, store.ErrNotFound):
		return err
	}
	fireAt := domain.FireAt(at, lastSent, p.opts.Repeat, p.opts.Window)
	return p.repo.ScheduleReminder(ctx, chatID, at, fireAt)
}

// UnscheduleNotification cancels a pending reminder, if any.
func (p *Planner) UnscheduleNotification(ctx context.Context, chatID int64) error {
	return p.repo.UnscheduleReminder(ctx, chatID)
}

// next returns the delivery time after a send at sentAt.
func (p *Planner) next(sentAt time.Time) time.Time {
	return domain.NextRepeat(sentAt, p.opts.Repeat, p.opts.Window)
}

// Scheduler periodically polls the DB and dispatches due reminders.
type Scheduler struct {
	repo    Repo
	planner *Planner
	log     *zap.Logger
	sender  Sender
	mailer  Mailer // optional
	poll    time.Duration
	now     func() time.Time
}

// New creates a new Scheduler. mailer may be nil.
func New(repo Repo, planner *Planner, log *zap.Logger, sender Sender, mailer Mailer) *Scheduler {
	poll := planner.opts.Poll
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &Scheduler{
		repo:    repo,
		planner: planner,
		log:     log,
		sender:  sender,
		mailer:  mailer,
		poll:    poll,
		now:     time.Now,
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one scheduling cycle: find due reminders, send, re-arm.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()

	due, err := s.repo.ListDueReminders(ctx, now, 100)
	if err != nil {
		s.log.Error("ListDueReminders failed", zap.Error(err))
		return
	}
	for _, rem := range due {
		s.deliver(ctx, rem.ChatID, now)
	}
}

func (s *Scheduler) deliver(ctx context.Context, chatID int64, now time.Time) {
	m, err := s.repo.CurrentMedicine(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		// Medicine removed since the reminder was armed.
		if err := s.repo.UnscheduleReminder(ctx, chatID); err != nil {
			s.log.Error("UnscheduleReminder failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		return
	}
	if err != nil {
		s.log.Error("CurrentMedicine failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	if err := s.sender.SendReminder(chatID, *m); err != nil {
		s.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	if s.mailer != nil {
		s.mailCopy(ctx, chatID, *m)
	}

	next := s.planner.next(now)
	if err := s.repo.MarkReminderSent(ctx, chatID, now, next); err != nil {
		s.log.Error("MarkReminderSent failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	s.log.Debug("reminder sent",
		zap.Int64("chatID", chatID),
		zap.Time("next", next),
		zap.String("nextLocal", domain.LocalizeTime(next, s.planner.opts.Window.Loc)),
	)
}

func (s *Scheduler) mailCopy(ctx context.Context, chatID int64, m domain.Medicine) {
	u, err := s.repo.GetUser(ctx, chatID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("GetUser failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		return
	}
	if u.Email == "" {
		return
	}
	if err := s.mailer.SendReminder(ctx, *u, m); err != nil {
		s.log.Warn("e-mail reminder failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}
