package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/pill-profile-bot/internal/config"
	"github.com/ykvlv/pill-profile-bot/internal/mailer"
	"github.com/ykvlv/pill-profile-bot/internal/profile"
	"github.com/ykvlv/pill-profile-bot/internal/scheduler"
	"github.com/ykvlv/pill-profile-bot/internal/store"
	"github.com/ykvlv/pill-profile-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	window, err := a.cfg.Window()
	if err != nil {
		return err
	}
	a.log.Info("starting pill-profile-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("language", a.cfg.Language),
		zap.Stringer("window", window),
		zap.Bool("mail", a.cfg.MailEnabled()),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	defer func() { _ = repo.Close() }()
	a.log.Info("sqlite ready")

	planner := scheduler.NewPlanner(repo, scheduler.Options{
		Poll:   a.cfg.PollInterval,
		Repeat: a.cfg.ReminderRepeat,
		Window: window,
	})
	profiles := profile.NewService(repo, planner, a.log.Named("profile"))
	router := telegram.NewRouter(a.bot, a.log.Named("telegram"), profiles, telegram.NewPrinter(a.cfg.Language))

	var mail scheduler.Mailer
	if a.cfg.MailEnabled() {
		mail = mailer.New(a.cfg.SendGridAPIKey, a.cfg.MailFrom)
	}
	sched := scheduler.New(repo, planner, a.log.Named("scheduler"), router, mail)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpSrv.Shutdown(shCtx); err != nil {
			a.log.Warn("http server shutdown error", zap.Error(err))
		}
		a.bot.StopReceivingUpdates()
		return nil
	})

	g.Go(func() error {
		return sched.Run(ctx)
	})

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updCh := a.bot.GetUpdatesChan(u)

		for {
			select {
			case <-ctx.Done():
				return nil
			case upd, ok := <-updCh:
				if !ok {
					return nil
				}
				router.HandleUpdate(ctx, upd)
			}
		}
	})

	return g.Wait()
}
