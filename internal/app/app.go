package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"fantasy-ai/backend/internal/api"
	"fantasy-ai/backend/internal/auth"
	"fantasy-ai/backend/internal/catalog"
	"fantasy-ai/backend/internal/character"
	"fantasy-ai/backend/internal/config"
	"fantasy-ai/backend/internal/database"
	"fantasy-ai/backend/internal/guest"
	"fantasy-ai/backend/internal/kv"
	"fantasy-ai/backend/internal/llm"
	"fantasy-ai/backend/internal/media"
	"fantasy-ai/backend/internal/realtime"
	"fantasy-ai/backend/internal/repository"
	"fantasy-ai/backend/internal/service"
	"fantasy-ai/backend/internal/usage"
)

// remoteStore is everything the application needs from the authenticated backend.
type remoteStore interface {
	repository.ConversationStore
	repository.CharacterSource
	repository.KeySource
}

// App holds the wired application and the resources it must release on shutdown.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Server   *http.Server
	Sessions *service.SessionManager
	Listener *realtime.PGListener

	closers []func() error
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not configured yet.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	if app.Listener != nil {
		go func() {
			if err := app.Listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Realtime listener stopped", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort)
		serveErr <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Open event streams end when their sessions close.
		app.Sessions.CloseAll()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}

// NewApp connects storage, builds the services and the HTTP server. Nothing is started.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)
	slog.Info("Successfully connected to SQLite database.")

	guestKV, err := newGuestKV(ctx, cfg, db)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, guestKV.Close)
	guestStore := guest.NewStore(guestKV, cfg.SummaryLimit)

	hub := realtime.NewHub()
	remote, err := app.newRemote(cfg, db, hub)
	if err != nil {
		app.Close()
		return nil, err
	}

	cat := catalog.New(catalog.Models{
		Default:   cfg.DefaultModel,
		Academic:  cfg.AcademicModel,
		Creative:  cfg.CreativeModel,
		Fitness:   cfg.FitnessModel,
		Nutrition: cfg.NutritionModel,
		Coaching:  cfg.CoachingModel,
	})
	resolver := character.NewResolver(remote, cat, cfg.CharacterCacheTTL)

	keys := llm.NewStoredKeyProvider(cfg.OpenRouterAPIKey, remote, llm.DefaultKeyName)
	completer, err := app.newCompleter(ctx, cfg, keys)
	if err != nil {
		app.Close()
		return nil, err
	}
	transcriber := llm.NewWhisperTranscriber(cfg.OpenRouterURL, cfg.TranscriptionModel, keys, cfg.CompletionTimeout)

	attacher, err := newAttacher(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	gate := usage.NewGate(guestStore, remote, usage.Limits{
		Guest:           cfg.GuestMessageLimit,
		Free:            cfg.FreeMessageLimit,
		SubscribedDaily: cfg.SubscribedDailyLimit,
	}, cfg.Location())

	app.Sessions = service.NewSessionManager(resolver, cat, service.SessionDeps{
		Guest:        guestStore,
		Remote:       remote,
		Gate:         gate,
		Completer:    completer,
		Attacher:     attacher,
		Timeout:      cfg.CompletionTimeout,
		HistoryLimit: cfg.HistoryLimit,
	})
	chatService := service.NewChatService(guestStore, remote, gate, transcriber, cfg.SummaryLimit)
	characterService := service.NewCharacterService(resolver, cat)

	router := api.NewRouter(
		auth.New(cfg.JWTSecret),
		api.NewChatHandler(chatService, app.Sessions),
		api.NewCharacterHandler(characterService),
		cfg.CORSAllowedOrigins,
	)

	port := cfg.AppPort
	if port == 0 {
		port = 8000
	}
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for the session event stream.
		IdleTimeout:       120 * time.Second,
	}
	return app, nil
}

// Close releases storage and client resources in reverse order of acquisition.
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.CloseAll()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("Failed to release resource", "error", err)
		}
	}
	a.closers = nil
}

func newGuestKV(ctx context.Context, cfg *config.Config, db *sql.DB) (kv.Store, error) {
	switch kv.StoreType(strings.ToLower(cfg.GuestStoreDriver)) {
	case kv.StoreTypeMemory:
		slog.Warn("Guest history is kept in memory and will not survive a restart.")
		return kv.NewStore(kv.StoreTypeMemory)
	case kv.StoreTypeRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := waitForRedis(ctx, rdb, 5); err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return kv.NewStore(kv.StoreTypeRedis, kv.WithRedisClient(rdb))
	case kv.StoreTypeSQLite, "":
		return kv.NewStore(kv.StoreTypeSQLite, kv.WithSQLiteDB(db))
	default:
		return nil, fmt.Errorf("unknown guest store driver %q", cfg.GuestStoreDriver)
	}
}

func (a *App) newRemote(cfg *config.Config, db *sql.DB, hub *realtime.Hub) (remoteStore, error) {
	switch strings.ToLower(cfg.RemoteStoreDriver) {
	case "supabase":
		repo, err := repository.NewSupabaseRepository(repository.SupabaseConfig{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseAPIKey}, hub)
		if err != nil {
			return nil, err
		}
		if cfg.SupabaseDBURL != "" {
			a.Listener = realtime.NewPGListener(cfg.SupabaseDBURL, hub)
		} else {
			slog.Warn("SUPABASE_DB_URL is not set; replies written by other clients will not be pushed live.")
		}
		slog.Info("Using Supabase for account conversations.", "url", cfg.SupabaseURL)
		return repo, nil
	case "sqlite", "":
		return repository.NewSQLiteRepository(db, hub), nil
	default:
		return nil, fmt.Errorf("unknown remote store driver %q", cfg.RemoteStoreDriver)
	}
}

func (a *App) newCompleter(ctx context.Context, cfg *config.Config, keys llm.KeyProvider) (llm.Completer, error) {
	switch strings.ToLower(cfg.CompletionProvider) {
	case "gemini":
		g, err := llm.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		slog.Info("Using Gemini for completions.", "model", cfg.GeminiModel)
		return g, nil
	case "openrouter", "":
		return llm.NewOpenRouterClient(cfg.OpenRouterURL, keys, cfg.CompletionTimeout), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.CompletionProvider)
	}
}

func newAttacher(ctx context.Context, cfg *config.Config) (*media.Attacher, error) {
	if cfg.MediaBucket == "" {
		slog.Info("MEDIA_BUCKET is not set; image attachments keep their client URI.")
		return media.NewAttacher(nil), nil
	}
	uploader, err := media.NewS3Uploader(ctx, media.S3Config{
		Bucket:    cfg.MediaBucket,
		Region:    cfg.AwsRegion,
		AccessKey: cfg.AwsAccessKey,
		SecretKey: cfg.AwsSecretKey,
		Endpoint:  cfg.MediaEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media uploader: %w", err)
	}
	return media.NewAttacher(uploader), nil
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// waitForRedis pings until Redis answers or the attempts run out.
func waitForRedis(ctx context.Context, rdb *redis.Client, attempts int) error {
	slog.Info("Waiting for Redis to be ready...", "addr", rdb.Options().Addr)
	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			slog.Info("Redis is ready.")
			return nil
		}
		slog.Debug("Redis not ready yet, retrying in 1 second...", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("redis is not reachable: %w", err)
}
