package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/ykvlv/pill-profile-bot/internal/profile"
)

// Pending state kinds used in conversational flows.
const (
	pendingField      = "await_field_text"
	pendingStock      = "await_stock_text"
	pendingSetupStock = "await_setup_stock_text"
	pendingLocation   = "await_location"
)

// pending is what the next free-form message of a chat answers.
type pending struct {
	kind     string
	field    profile.Field
	medicine uuid.UUID
	preset   string
}

// Router wires Telegram updates to the profile screen and holds minimal
// in-memory conversation state.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	profiles *profile.Service
	p        *message.Printer
	state    map[int64]pending
	mu       sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, profiles *profile.Service, p *message.Printer) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		profiles: profiles,
		p:        p,
		state:    make(map[int64]pending),
	}
}

func (r *Router) setPending(chatID int64, s pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

func (r *Router) getPending(chatID int64) (pending, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.state[chatID]
	return s, ok
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case msg.Location != nil:
			r.handleLocation(ctx, chatID, msg.Location)
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/profile"):
			r.handleProfile(ctx, chatID)
		case strings.HasPrefix(text, "/edit"):
			r.handleEdit(ctx, chatID, "")
		case strings.HasPrefix(text, "/save"):
			r.handleSave(ctx, chatID, "")
		case strings.HasPrefix(text, "/setup"):
			r.handleSetup(ctx, chatID)
		case strings.HasPrefix(text, "/remind"):
			r.handleRemind(ctx, chatID)
		default:
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case data == cbEdit:
			r.handleEdit(ctx, chatID, cb.ID)
		case data == cbSave:
			r.handleSave(ctx, chatID, cb.ID)
		case data == cbRefresh:
			r.handleRefresh(ctx, chatID, cb.ID)
		case data == cbSetup:
			_ = r.answerCallback(cb.ID, "")
			r.handleSetup(ctx, chatID)
		case data == cbLocation:
			r.askLocation(ctx, chatID, cb.ID)
		case strings.HasPrefix(data, cbFieldPrefix):
			r.askField(ctx, chatID, strings.TrimPrefix(data, cbFieldPrefix), cb.ID)
		case strings.HasPrefix(data, cbStockPrefix):
			r.askStock(ctx, chatID, strings.TrimPrefix(data, cbStockPrefix), cb.ID)
		case strings.HasPrefix(data, cbRemindPrefix):
			r.handleRemindCallback(ctx, chatID, strings.TrimPrefix(data, cbRemindPrefix), cb.ID)
		case strings.HasPrefix(data, cbSetupPrefix):
			r.askSetupStock(ctx, chatID, strings.TrimPrefix(data, cbSetupPrefix), cb.ID)
		default:
			// Unknown callback: ignore silently
		}
	}
}
