// Command inquiry-desk runs the Discord inquiry bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres for the inquiry audit trail.
//   - Connects to the Discord gateway, reacts to the tracked message and opens
//     or closes private inquiry channels as members add or remove the reaction.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /audit/recent and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/inquiry-desk/audit"
	"github.com/onnwee/inquiry-desk/config"
	"github.com/onnwee/inquiry-desk/gateway"
	"github.com/onnwee/inquiry-desk/inquiry"
	"github.com/onnwee/inquiry-desk/server"
	"github.com/onnwee/inquiry-desk/telemetry"
)

const (
	serviceName    = "inquiry-desk"
	serviceVersion = "1.0.0"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("inquiry-desk exited with error", slog.Any("err", err))
		os.Exit(1)
	}
}

// setupLogging configures slog from LOG_LEVEL and LOG_FORMAT. Defaults: level=info, format=text.
func setupLogging() {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		format = "text"
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", format))
}

func run(cfg *config.Config) error {
	telemetry.Init()

	shutdownTracing, err := telemetry.InitTracing(serviceName, serviceVersion)
	if err != nil {
		return fmt.Errorf("tracing initialization failed: %w", err)
	}
	defer shutdownTracing()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		recorder audit.Recorder = audit.Nop{}
		reader   server.AuditReader
	)
	if cfg.AuditEnabled() {
		database, store, err := openAudit(cfg.DBDsn)
		if err != nil {
			slog.Warn("audit trail unavailable; continuing without it", slog.Any("err", err), slog.String("component", "audit"))
		} else {
			defer func() {
				if err := database.Close(); err != nil {
					slog.Error("failed to close audit database", slog.Any("err", err))
				}
			}()
			recorder, reader = store, store
		}
	}

	discord, err := gateway.NewDiscord(cfg.BotToken)
	if err != nil {
		return err
	}

	registry := inquiry.NewRegistry()
	handler := inquiry.NewHandler(discord, registry, inquiry.Target{
		MessageID:  cfg.MessageID,
		ChannelID:  cfg.ChannelID,
		CategoryID: cfg.CategoryID,
		Emoji:      gateway.ParseEmoji(cfg.Emoji),
	}, inquiry.Options{
		ChannelPrefix:  cfg.ChannelPrefix,
		WelcomeMessage: cfg.WelcomeMessage,
		DeleteReason:   cfg.DeleteReason,
		Recorder:       recorder,
	})
	handler.Register(discord)

	slog.Info("starting inquiry bot",
		slog.String("message_id", cfg.MessageID),
		slog.String("channel_id", cfg.ChannelID),
		slog.String("category_id", cfg.CategoryID),
		slog.String("emoji", cfg.Emoji))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := discord.Open(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		slog.Info("closing discord gateway")
		return discord.Close()
	})

	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			telemetry.SetGatewayUp(discord.Ready())
			telemetry.SetOpenInquiries(registry.Len())
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	if cfg.HTTPEnabled() {
		g.Go(func() error {
			return server.Start(gctx, server.Deps{
				Registry:     registry,
				GatewayReady: discord.Ready,
				Audit:        reader,
			}, cfg.HTTPAddr)
		})
	}

	err = g.Wait()
	slog.Info("shutting down", slog.Int("open_inquiries", registry.Len()))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openAudit(dsn string) (*sql.DB, *audit.Store, error) {
	database, err := audit.Connect(dsn)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("ping audit db: %w", err)
	}
	slog.Info("running audit migrations", slog.String("component", "audit_migrate"))
	if err := audit.RunMigrations(database); err != nil {
		_ = database.Close()
		return nil, nil, err
	}
	return database, audit.NewStore(database), nil
}
