package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/store"
)

// Store is the persistence the profile screen needs.
type Store interface {
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	ListMedicines(ctx context.Context, chatID int64) ([]domain.Medicine, error)
	ReplaceCurrentMedicine(ctx context.Context, m *domain.Medicine) error
	BeginSave(ctx context.Context) (store.SaveTx, error)
	GetString(ctx context.Context, chatID int64, key string) (string, error)
	SetObject(ctx context.Context, chatID int64, key string, value any) error
}

// Notifier arms and disarms the stock reminder of a chat. Both calls must
// be idempotent.
type Notifier interface {
	ScheduleNotification(ctx context.Context, chatID int64, at time.Time) error
	UnscheduleNotification(ctx context.Context, chatID int64) error
}

// Service is the User Profile screen controller. It keeps one State per
// chat in memory.
type Service struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]State
}

// NewService creates a profile screen controller.
func NewService(st Store, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		sessions: make(map[int64]State),
	}
}

func (s *Service) session(chatID int64) State {
	if st, ok := s.sessions[chatID]; ok {
		return st
	}
	return newState(chatID)
}

// load returns the chat's session, building it from storage on first use.
// Callers hold s.mu.
func (s *Service) load(ctx context.Context, chatID int64) (State, error) {
	if st, ok := s.sessions[chatID]; ok {
		return st, nil
	}
	return s.fresh(ctx, chatID)
}

// fresh builds a read-only session from the saved profile, medicines and
// reminder setting, and stores it. Callers hold s.mu.
func (s *Service) fresh(ctx context.Context, chatID int64) (State, error) {
	st := newState(chatID)
	raw, err := s.store.GetString(ctx, chatID, domain.SettingPillReminder)
	if err != nil {
		return st, fmt.Errorf("load reminder setting: %w", err)
	}
	st.Reminder = domain.ParseReminderInterval(raw)

	st, err = s.refresh(ctx, st)
	if err != nil {
		return st, err
	}
	s.sessions[chatID] = st
	return st, nil
}

// State returns the current in-memory state of a chat.
func (s *Service) State(chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(chatID).clone()
}

// Open is called whenever the screen is shown. Coming back from a location
// lookup keeps the unsaved draft; otherwise the screen resets to read-only
// and reloads everything.
func (s *Service) Open(ctx context.Context, chatID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.session(chatID)
	if st.ReturningFromLocation {
		st = st.clone()
		st.ReturningFromLocation = false
		s.sessions[chatID] = st
		return st, nil
	}
	return s.fresh(ctx, chatID)
}

// Refresh reloads profile and medicine data and re-evaluates the reminder
// without leaving edit mode or dropping the draft.
func (s *Service) Refresh(ctx context.Context, chatID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[chatID]; !ok {
		return s.fresh(ctx, chatID)
	}
	st, err := s.refresh(ctx, s.sessions[chatID])
	if err != nil {
		return st, err
	}
	s.sessions[chatID] = st
	return st, nil
}

func (s *Service) refresh(ctx context.Context, st State) (State, error) {
	st = st.clone()

	u, err := s.store.GetUser(ctx, st.ChatID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u = nil
	case err != nil:
		return st, fmt.Errorf("load user: %w", err)
	}
	st.User = u

	meds, err := s.store.ListMedicines(ctx, st.ChatID)
	if err != nil {
		return st, fmt.Errorf("load medicines: %w", err)
	}
	st.Medicines = meds
	for id := range st.StagedStock {
		if !containsMedicine(meds, id) {
			delete(st.StagedStock, id)
		}
	}

	if st.Mode == domain.ReadOnly {
		st.Draft = draftFromUser(u)
		st.StagedStock = nil
	}
	st = st.derive()

	// Cached for the home screen widget.
	if err := s.store.SetObject(ctx, st.ChatID, domain.SettingWidgetRemainingPills, st.Derived.Stock); err != nil {
		return st, fmt.Errorf("cache remaining pills: %w", err)
	}
	if err := s.store.SetObject(ctx, st.ChatID, domain.SettingWidgetRemainingUnit, st.Derived.Unit); err != nil {
		return st, fmt.Errorf("cache remaining unit: %w", err)
	}

	action := domain.Decide(st.Derived.HasMedicine && st.Derived.ShouldNotify, s.now())
	if err := s.apply(ctx, st.ChatID, action); err != nil {
		return st, err
	}
	return st, nil
}

func containsMedicine(meds []domain.Medicine, id uuid.UUID) bool {
	for _, m := range meds {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) apply(ctx context.Context, chatID int64, a domain.ReminderAction) error {
	switch a.Kind {
	case domain.ActionSchedule:
		if err := s.notifier.ScheduleNotification(ctx, chatID, a.At); err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}
	default:
		if err := s.notifier.UnscheduleNotification(ctx, chatID); err != nil {
			return fmt.Errorf("unschedule reminder: %w", err)
		}
	}
	s.log.Debug("reminder policy applied",
		zap.Int64("chatID", chatID),
		zap.Stringer("action", a.Kind),
	)
	return nil
}

// PressEdit handles the edit/save toggle: in read-only mode it enters edit
// mode, in edit mode it saves.
func (s *Service) PressEdit(ctx context.Context, chatID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, chatID)
	if err != nil {
		return st, err
	}
	if st.Mode == domain.Editing {
		return s.save(ctx, chatID)
	}
	st = st.PressEdit()
	s.sessions[chatID] = st
	return st, nil
}

// SetField stages a form field value.
func (s *Service) SetField(ctx context.Context, chatID int64, f Field, value string) (State, error) {
	return s.update(ctx, chatID, func(st State) (State, error) { return st.SetField(f, value) })
}

// StageStock stages a pill count for a medicine row.
func (s *Service) StageStock(ctx context.Context, chatID int64, id uuid.UUID, stock int) (State, error) {
	return s.update(ctx, chatID, func(st State) (State, error) { return st.StageStock(id, stock) })
}

// SelectReminder stages a reminder lead time.
func (s *Service) SelectReminder(ctx context.Context, chatID int64, r domain.ReminderInterval) (State, error) {
	return s.update(ctx, chatID, func(st State) (State, error) { return st.SelectReminder(r) })
}

// BeginLocationLookup marks that the user left the form to enter a location.
func (s *Service) BeginLocationLookup(ctx context.Context, chatID int64) (State, error) {
	return s.update(ctx, chatID, func(st State) (State, error) {
		if !st.Mode.Interactive() {
			return st, ErrNotEditing
		}
		c := st.clone()
		c.ReturningFromLocation = true
		return c, nil
	})
}

// FinishLocationLookup stores the looked-up location in the draft. The
// "came back" flag stays set until the next Open.
func (s *Service) FinishLocationLookup(ctx context.Context, chatID int64, location string) (State, error) {
	return s.update(ctx, chatID, func(st State) (State, error) {
		c, err := st.SetField(FieldLocation, location)
		if err != nil {
			return st, err
		}
		c.ReturningFromLocation = true
		return c, nil
	})
}

func (s *Service) update(ctx context.Context, chatID int64, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load(ctx, chatID)
	if err != nil {
		return st, err
	}
	st, err = fn(st)
	if err != nil {
		return st, err
	}
	s.sessions[chatID] = st
	return st, nil
}

// Save validates the draft and persists profile, staged stock edits and the
// reminder setting in one transaction. On a validation or storage error the
// screen stays in edit mode and nothing is written.
func (s *Service) Save(ctx context.Context, chatID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, chatID)
}

func (s *Service) save(ctx context.Context, chatID int64) (State, error) {
	st, err := s.load(ctx, chatID)
	if err != nil {
		return st, err
	}
	if st.Mode != domain.Editing {
		return st, ErrNotEditing
	}

	valid, err := domain.Validate(st.Draft)
	if err != nil {
		st.Mode = st.Mode.Next(domain.SaveRejected)
		return st, err
	}

	if err := s.persist(ctx, st, valid); err != nil {
		st.Mode = st.Mode.Next(domain.SaveRejected)
		s.log.Error("profile save failed", zap.Int64("chatID", chatID), zap.Error(err))
		return st, err
	}

	st = st.clone()
	st.Mode = st.Mode.Next(domain.SaveAccepted)
	st.StagedStock = nil
	st.ReturningFromLocation = false
	s.sessions[chatID] = st

	st, err = s.refresh(ctx, st)
	if err != nil {
		return st, err
	}
	s.sessions[chatID] = st
	return st, nil
}

func (s *Service) persist(ctx context.Context, st State, valid domain.ValidProfile) (err error) {
	now := s.now().UTC()

	tx, err := s.store.BeginSave(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && err == nil {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
	}()

	u := domain.User{ChatID: st.ChatID, CreatedAt: now}
	if st.User != nil {
		u = *st.User
	}
	valid.Apply(&u)
	u.UpdatedAt = now
	if err := tx.UpsertUser(ctx, &u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	for id, stock := range st.StagedStock {
		if err := tx.UpdateMedicineStock(ctx, id, float64(stock), now); err != nil {
			return fmt.Errorf("save stock: %w", err)
		}
	}

	if err := tx.SetString(ctx, st.ChatID, domain.SettingPillReminder, st.Reminder.String()); err != nil {
		return fmt.Errorf("save reminder setting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SetupMedicine is the medicine setup screen: it replaces the chat's
// current medicine with a preset and an initial pill count, then refreshes.
func (s *Service) SetupMedicine(ctx context.Context, chatID int64, presetKey string, stock int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := domain.PresetByKey(presetKey)
	if !ok {
		return s.session(chatID), ErrUnknownPreset
	}
	if stock < 0 {
		return s.session(chatID), domain.ErrNegativeNumber
	}
	st, err := s.load(ctx, chatID)
	if err != nil {
		return st, err
	}

	m := domain.NewMedicine(chatID, p, stock, s.now())
	if err := s.store.ReplaceCurrentMedicine(ctx, &m); err != nil {
		return st, fmt.Errorf("save medicine: %w", err)
	}
	s.log.Info("medicine configured",
		zap.Int64("chatID", chatID),
		zap.String("medicine", m.Name),
		zap.Int("stock", stock),
	)

	st, err = s.refresh(ctx, st)
	if err != nil {
		return st, err
	}
	s.sessions[chatID] = st
	return st, nil
}
