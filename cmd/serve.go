package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/giladondon/xo-assistance/internal/bot"
	"github.com/giladondon/xo-assistance/internal/calendar"
	"github.com/giladondon/xo-assistance/internal/config"
	"github.com/giladondon/xo-assistance/internal/contacts"
	"github.com/giladondon/xo-assistance/internal/google"
	"github.com/giladondon/xo-assistance/internal/instrumentation"
	"github.com/giladondon/xo-assistance/internal/intent"
	"github.com/giladondon/xo-assistance/internal/logging"
	"github.com/giladondon/xo-assistance/internal/notify"
	"github.com/giladondon/xo-assistance/internal/session"
	"github.com/giladondon/xo-assistance/internal/telegram"
	"github.com/giladondon/xo-assistance/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode bool
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant bot and change watcher",
		Long: `Start the Telegram bot, the per-chat calendar change watcher and,
when configured, the Prometheus metrics endpoint and the morning agenda
push.

Configuration is read from the environment; a .env file in the working
directory is loaded first. Required settings:
  TELEGRAM_TOKEN            Telegram bot token
  OPENAI_API_KEY            OpenAI API key for intent extraction
  GOOGLE_CREDENTIALS_FILE   OAuth client secrets JSON (default: credentials.json)

The Google redirect URI is taken from GOOGLE_REDIRECT_URI or, when
unset, from the first redirect URI in the client secrets file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to the .env file to load before reading configuration")

	return cmd
}

// calendarProvider adapts the concrete client factory to the resolver's
// collaborator interface.
type calendarProvider struct {
	factory *calendar.Factory
}

func (p calendarProvider) ForUser(ctx context.Context, userID int64) (bot.Calendar, error) {
	return p.factory.ForUser(ctx, userID)
}

func runServe(envFile string, debugMode bool) error {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.Setup(level)

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := instrumentation.NewProvider(ctx, "xo-assistance", version, cfg.MetricsAddr != "")
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Resolving the redirect target here makes a broken OAuth setup a
	// startup failure instead of a per-message surprise.
	oauthConf, err := google.LoadOAuthConfig(cfg.GoogleCredentialsFile, cfg.GoogleRedirectURI)
	if err != nil {
		return err
	}

	store := google.NewTokenStore(cfg.StateDir, oauthConf, logging.WithComponent(logger, "tokens"), provider.Metrics())
	flow := google.NewFlow(oauthConf, store, logging.WithComponent(logger, "oauth"))
	defer func() {
		if err := flow.Close(); err != nil {
			logger.Error("redirect listener shutdown failed", logging.Err(err))
		}
	}()

	factory := calendar.NewFactory(oauthConf, store)

	directory, err := loadDirectory(cfg)
	if err != nil {
		return fmt.Errorf("failed to load label directory: %w", err)
	}
	logger.Info("label directory loaded", slog.Int("labels", len(directory.Labels())))

	renderer, err := loadRenderer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load notification templates: %w", err)
	}

	var parserOpts []intent.Option
	if cfg.IntentPromptFile != "" {
		parserOpts = append(parserOpts, intent.WithIntentPromptFile(cfg.IntentPromptFile))
	}
	if cfg.SummarizePromptFile != "" {
		parserOpts = append(parserOpts, intent.WithSummarizePromptFile(cfg.SummarizePromptFile))
	}
	parser := intent.NewOpenAIParser(cfg.OpenAIKey, cfg.OpenAIModel, parserOpts...)

	tg, err := telegram.New(cfg.TelegramToken, logging.WithComponent(logger, "telegram"))
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	sessions := session.NewStore()

	w := watcher.New(watcher.Config{
		Source:    factory,
		Sessions:  sessions,
		Renderer:  renderer,
		Messenger: tg,
		Metrics:   provider.Metrics(),
		Logger:    logging.WithComponent(logger, "watcher"),
		Interval:  cfg.PollInterval,
		Warmup:    cfg.PollWarmup,
	})

	b := bot.New(bot.Config{
		Sessions:    sessions,
		Credentials: store,
		Auth:        flow,
		Calendars:   calendarProvider{factory: factory},
		Parser:      parser,
		Directory:   directory,
		Messenger:   tg,
		Watcher:     w,
		Metrics:     provider.Metrics(),
		Logger:      logging.WithComponent(logger, "bot"),
		Location:    cfg.Location(),
	})

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, provider, logger)
	}

	if cfg.AgendaCron != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.AgendaCron, func() { b.PushAgenda(ctx) }); err != nil {
			return fmt.Errorf("invalid AGENDA_CRON %q: %w", cfg.AgendaCron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("agenda push scheduled", slog.String("cron", cfg.AgendaCron))
	}

	logger.Info("bot is listening for messages")
	tg.Listen(ctx, b.HandleMessage)
	return nil
}

// loadDirectory builds the label directory from the configured backing
// store: SQLite when CONTACTS_DB is set, CSV otherwise.
func loadDirectory(cfg *config.Config) (contacts.Directory, error) {
	if cfg.ContactsDB != "" {
		return contacts.LoadSQLite(cfg.ContactsDB)
	}
	return contacts.LoadCSV(cfg.ContactsFile)
}

func loadRenderer(cfg *config.Config) (*notify.Renderer, error) {
	if cfg.TemplatesFile != "" {
		return notify.LoadRenderer(cfg.TemplatesFile, cfg.Location())
	}
	return notify.NewRenderer(cfg.Location()), nil
}

func startMetricsServer(ctx context.Context, addr string, provider *instrumentation.Provider, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Err(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}()
}
