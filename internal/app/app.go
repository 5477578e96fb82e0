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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/PoluyanbIch/exambot/internal/config"
	"github.com/PoluyanbIch/exambot/internal/extract"
	"github.com/PoluyanbIch/exambot/internal/logging"
	"github.com/PoluyanbIch/exambot/internal/server"
	"github.com/PoluyanbIch/exambot/internal/service"
	"github.com/PoluyanbIch/exambot/internal/storage"
	"github.com/PoluyanbIch/exambot/internal/telegram"
)

// Application aggregates the bot, its storage and the optional metrics server.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	api    *tgbotapi.BotAPI
	bot    *telegram.Bot
	notify *service.NotificationQueue
	http   *http.Server

	closers   []func()
	bgCancels []context.CancelFunc
}

// New connects to Telegram and the configured storage backend and wires the services.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("backend", cfg.Storage.Backend).Msg("starting application bootstrap")

	if err := tgbotapi.SetLogger(logging.NewBotLogger(logger)); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	if cfg.Telegram.AdminID == 0 {
		logger.Warn().Msg("ADMIN_ID is not set; admin features are disabled")
	}

	a := &Application{cfg: cfg, logger: logger, api: api}

	backend, pinger, err := a.openBackend(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	users := storage.NewUserStore(backend)
	answers := storage.NewAnswerStore(backend)
	questions := storage.NewQuestionSetStore(backend)

	a.notify = service.NewNotificationQueue(telegram.NewNotifier(api), cfg.Quiz.NotifyQueueSize, logger)
	recorder := service.NewAnswerRecorder(users, answers, a.notify, cfg.Telegram.AdminID, logger)

	extractor := extract.NewRouter(
		extract.NewPDF(),
		extract.NewTesseract(cfg.Extract.TesseractPath, cfg.Extract.OCRLanguage),
	)
	ingestor := service.NewIngestor(telegram.NewFileFetcher(api, cfg.Extract.DownloadTimeout), extractor)

	quiz := service.NewQuizService(
		users,
		answers,
		questions,
		service.NewMemorySessionStore(),
		recorder,
		ingestor,
		service.NewAdminGate(cfg.Telegram.AdminID),
		service.ServiceOptions{
			Shuffle:        cfg.Quiz.Shuffle,
			AnswersPreview: cfg.Quiz.AnswersPreview,
		},
		logger,
	)
	a.bot = telegram.NewBot(api, quiz, logger)

	if cfg.MetricsAddr != "" {
		a.http = server.NewHTTPServer(cfg.MetricsAddr, logger, pinger)
	}

	return a, nil
}

// openBackend builds the storage backend named by STORE_BACKEND. The returned
// pinger is nil for backends without a remote dependency worth probing.
func (a *Application) openBackend(ctx context.Context) (storage.Backend, server.Pinger, error) {
	s := a.cfg.Storage
	switch s.Backend {
	case config.BackendMemory:
		a.logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return storage.NewMemoryBackend(), nil, nil

	case config.BackendGist:
		return storage.NewGistBackend(s.GistID, s.GithubToken, nil), nil, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr, DB: s.RedisDB})
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.logger.Error().Err(err).Msg("redis shutdown error")
			}
		})
		backend := storage.NewRedisBackend(client, s.RedisPrefix)
		if err := backend.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return backend, backend, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, s.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		backend := storage.NewPostgresBackend(pool)
		if err := backend.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		return backend, backend, nil

	default:
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store dir: %w", err)
		}
		return storage.NewFileBackend(s.Dir), nil, nil
	}
}

// Run polls Telegram until a termination signal arrives or ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	a.startBackgroundWorkers(ctx)

	if a.http != nil {
		go func() {
			a.logger.Info().Str("addr", a.cfg.MetricsAddr).Msg("metrics server listening")
			if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.cfg.Telegram.PollTimeout
	updates := a.api.GetUpdatesChan(u)

	botDone := make(chan error, 1)
	go func() {
		botDone <- a.bot.Run(ctx, updates)
	}()
	a.logger.Info().Msg("bot is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case runErr = <-errCh:
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	a.api.StopReceivingUpdates()
	cancel()
	if err := <-botDone; err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("bot stopped with error")
	}

	if a.http != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.close()

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.notify.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("notification queue stopped")
		}
	}()
}

func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
