package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/profile"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	if id == "" {
		return nil
	}
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// show sends the rendered profile screen.
func (r *Router) show(chatID int64, st profile.State) {
	v := profile.Render(st)
	msg := tgbotapi.NewMessage(chatID, screenText(r.p, v))
	msg.ReplyMarkup = screenKeyboard(r.p, v)
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn("send screen failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// fail reports err to the user: as a callback toast when cbID is set,
// otherwise as a message. Unexpected errors are logged.
func (r *Router) fail(chatID int64, cbID string, err error) {
	var text string
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		text = r.p.Sprintf(verr.Key())
	case errors.Is(err, profile.ErrNotEditing):
		text = r.p.Sprintf(notEditingText)
	case errors.Is(err, domain.ErrEmptyNumber),
		errors.Is(err, domain.ErrInvalidNumber),
		errors.Is(err, domain.ErrNegativeNumber):
		text = r.p.Sprintf(invalidNumberText)
	default:
		r.log.Error("profile operation failed", zap.Error(err), zap.Int64("chatID", chatID))
		text = r.p.Sprintf(genericErrorText)
	}

	if cbID != "" {
		if err := r.answerCallback(cbID, text); err == nil {
			return
		}
	}
	r.sendText(chatID, text)
}

func (r *Router) editing(chatID int64) bool {
	return r.profiles.State(chatID).Mode == domain.Editing
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	r.clearPending(chatID)
	msg := tgbotapi.NewMessage(chatID, r.p.Sprintf(startText))
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
	r.handleProfile(ctx, chatID)
}

func (r *Router) handleProfile(ctx context.Context, chatID int64) {
	st, err := r.profiles.Open(ctx, chatID)
	if err != nil {
		r.fail(chatID, "", err)
		return
	}
	r.show(chatID, st)
}

// handleEdit is the edit/save toggle.
func (r *Router) handleEdit(ctx context.Context, chatID int64, cbID string) {
	st, err := r.profiles.PressEdit(ctx, chatID)
	if err != nil {
		r.fail(chatID, cbID, err)
		return
	}
	r.clearPending(chatID)
	_ = r.answerCallback(cbID, editToast(r.p, st.Mode))
	r.show(chatID, st)
}

// handleRefresh reloads the screen data without resetting it.
func (r *Router) handleRefresh(ctx context.Context, chatID int64, cbID string) {
	st, err := r.profiles.Refresh(ctx, chatID)
	if err != nil {
		r.fail(chatID, cbID, err)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.show(chatID, st)
}

func (r *Router) handleSave(ctx context.Context, chatID int64, cbID string) {
	st, err := r.profiles.Save(ctx, chatID)
	if err != nil {
		r.fail(chatID, cbID, err)
		return
	}
	r.clearPending(chatID)
	if cbID != "" {
		_ = r.answerCallback(cbID, r.p.Sprintf(savedText))
	} else {
		r.sendText(chatID, r.p.Sprintf(savedText))
	}
	r.show(chatID, st)
}

// --- Medicine setup flow ---

func (r *Router) handleSetup(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, r.p.Sprintf(choosePresetText))
	msg.ReplyMarkup = presetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) askSetupStock(ctx context.Context, chatID int64, key, cbID string) {
	preset, ok := domain.PresetByKey(key)
	if !ok {
		r.fail(chatID, cbID, profile.ErrUnknownPreset)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.setPending(chatID, pending{kind: pendingSetupStock, preset: preset.Key})
	r.sendText(chatID, r.p.Sprintf(askStockFmt, preset.Name))
}

// --- Reminder flow ---

func (r *Router) handleRemind(ctx context.Context, chatID int64) {
	st := r.profiles.State(chatID)
	if st.Mode != domain.Editing {
		r.fail(chatID, "", profile.ErrNotEditing)
		return
	}
	msg := tgbotapi.NewMessage(chatID, r.p.Sprintf(chooseRemindText))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(reminderButtons(r.p, st.Reminder))
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleRemindCallback(ctx context.Context, chatID int64, data, cbID string) {
	days, err := strconv.Atoi(data)
	if err != nil {
		r.fail(chatID, cbID, fmt.Errorf("%w: %q", profile.ErrInvalidReminder, data))
		return
	}
	st, err := r.profiles.SelectReminder(ctx, chatID, domain.ReminderInterval(days))
	if err != nil {
		r.fail(chatID, cbID, err)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.show(chatID, st)
}

// --- Field flows ---

func (r *Router) askField(ctx context.Context, chatID int64, name, cbID string) {
	f, ok := profile.ParseField(name)
	if !ok {
		r.fail(chatID, cbID, profile.ErrUnknownField)
		return
	}
	if f == profile.FieldLocation {
		r.askLocation(ctx, chatID, cbID)
		return
	}
	if !r.editing(chatID) {
		r.fail(chatID, cbID, profile.ErrNotEditing)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.setPending(chatID, pending{kind: pendingField, field: f})
	r.sendText(chatID, r.p.Sprintf(askFieldFmt, strings.ToLower(r.p.Sprintf(fieldLabels[f]))))
}

func (r *Router) askLocation(ctx context.Context, chatID int64, cbID string) {
	if _, err := r.profiles.BeginLocationLookup(ctx, chatID); err != nil {
		r.fail(chatID, cbID, err)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.setPending(chatID, pending{kind: pendingLocation})
	msg := tgbotapi.NewMessage(chatID, r.p.Sprintf(askLocationText))
	msg.ReplyMarkup = locationKeyboard(r.p)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleLocation(ctx context.Context, chatID int64, loc *tgbotapi.Location) {
	s, ok := r.getPending(chatID)
	if !ok || s.kind != pendingLocation {
		return
	}
	r.finishLocation(ctx, chatID, fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude))
}

// finishLocation stores the location and reopens the screen with the
// unsaved draft intact.
func (r *Router) finishLocation(ctx context.Context, chatID int64, location string) {
	r.clearPending(chatID)
	if _, err := r.profiles.FinishLocationLookup(ctx, chatID, location); err != nil {
		r.fail(chatID, "", err)
		return
	}
	st, err := r.profiles.Open(ctx, chatID)
	if err != nil {
		r.fail(chatID, "", err)
		return
	}
	r.show(chatID, st)
}

func (r *Router) askStock(ctx context.Context, chatID int64, rawID, cbID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		r.fail(chatID, cbID, fmt.Errorf("%w: %v", profile.ErrUnknownMedicine, err))
		return
	}
	st := r.profiles.State(chatID)
	if st.Mode != domain.Editing {
		r.fail(chatID, cbID, profile.ErrNotEditing)
		return
	}
	name := ""
	for _, m := range st.Medicines {
		if m.ID == id {
			name = m.Name
		}
	}
	if name == "" {
		r.fail(chatID, cbID, profile.ErrUnknownMedicine)
		return
	}
	_ = r.answerCallback(cbID, "")
	r.setPending(chatID, pending{kind: pendingStock, medicine: id})
	r.sendText(chatID, r.p.Sprintf(askStockFmt, name))
}

// --- Free-form dispatcher ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	s, ok := r.getPending(chatID)
	if !ok {
		// No pending flow: ignore free-form message
		return
	}

	switch s.kind {
	case pendingField:
		r.clearPending(chatID)
		st, err := r.profiles.SetField(ctx, chatID, s.field, text)
		if err != nil {
			r.fail(chatID, "", err)
			return
		}
		r.show(chatID, st)

	case pendingLocation:
		r.finishLocation(ctx, chatID, text)

	case pendingStock:
		n, err := domain.ParseStock(text)
		if err != nil {
			r.fail(chatID, "", err)
			return
		}
		r.clearPending(chatID)
		st, err := r.profiles.StageStock(ctx, chatID, s.medicine, n)
		if err != nil {
			r.fail(chatID, "", err)
			return
		}
		r.show(chatID, st)

	case pendingSetupStock:
		n, err := domain.ParseStock(text)
		if err != nil {
			r.fail(chatID, "", err)
			return
		}
		r.clearPending(chatID)
		st, err := r.profiles.SetupMedicine(ctx, chatID, s.preset, n)
		if err != nil {
			r.fail(chatID, "", err)
			return
		}
		r.show(chatID, st)
	}
}

// SendReminder sends the low stock reminder for m.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendReminder(chatID int64, m domain.Medicine) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, reminderText(r.p, m)))
	return err
}
