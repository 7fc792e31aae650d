// ABOUTME: Entry point for the beacon-relay notification server.
// ABOUTME: Relays deduplicated events through Bedrock to Slack.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/beacon-relay/internal/config"
	"github.com/2389/beacon-relay/internal/gate"
	"github.com/2389/beacon-relay/internal/generate"
	"github.com/2389/beacon-relay/internal/notify"
	"github.com/2389/beacon-relay/internal/relay"
	"github.com/2389/beacon-relay/internal/server"
	"github.com/2389/beacon-relay/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _
| |__   ___  __ _  ___ ___  _ __
| '_ \ / _ \/ _' |/ __/ _ \| '_ \
| |_) |  __/ (_| | (_| (_) | | | |
|_.__/ \___|\__,_|\___\___/|_| |_|
`

// getConfigPath returns the path to the relay config file.
// Priority: BEACON_CONFIG env var > XDG_CONFIG_HOME/beacon/relay.yaml > ~/.config/beacon/relay.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BEACON_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "relay.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "beacon", "relay.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: beacon-relay <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the relay server")
		fmt.Println("  init      Write a starter config file")
		fmt.Println("  health    Check relay health")
		fmt.Println("  history   Show recent relay decisions")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "history":
		err = runHistory(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Gate:    %s (ttl %s, fail-%s)\n", cfg.Gate.Store, cfg.Gate.TTL, cfg.Gate.FailMode)
	green.Print("    ▶ ")
	fmt.Printf("Bedrock: %s (%s)\n", cfg.Bedrock.Mode, cfg.Bedrock.Region)
	fmt.Println()

	logger.Info("starting beacon-relay",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"gate_store", cfg.Gate.Store,
	)

	r, cleanup, err := buildRelay(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	verify := server.SlackVerifier(cfg.Slack.SigningSecret)
	srv := server.New(cfg.Server.HTTPAddr, r, verify, logger)
	return srv.Run(ctx)
}

// buildRelay constructs the relay and all its collaborators once, for
// reuse across every invocation. The returned cleanup closes the gate
// store and the ledger.
func buildRelay(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*relay.Relay, func(), error) {
	var gateStore gate.Store
	switch cfg.Gate.Store {
	case config.GateStoreMemory:
		gateStore = gate.NewMemoryStore(cfg.Gate.MemoryMaxKeys)
	default:
		gateStore = gate.NewRedisStore(gate.RedisOptions{
			Addr:     cfg.Gate.RedisAddr,
			Password: cfg.Gate.RedisPassword,
			DB:       cfg.Gate.RedisDB,
			UseTLS:   cfg.Gate.RedisTLS,
		})
	}

	g := gate.New(gateStore, cfg.Gate.FailOpen(), logger)

	generator, err := generate.NewBedrock(ctx, cfg.Bedrock, logger)
	if err != nil {
		gateStore.Close()
		return nil, nil, fmt.Errorf("creating generator: %w", err)
	}

	sink := notify.NewSlackSink(cfg.Slack.BotToken, logger)

	var ledger store.Store
	if cfg.Database.Path != "" {
		ledger, err = store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			gateStore.Close()
			return nil, nil, fmt.Errorf("opening audit ledger: %w", err)
		}
	}

	r := relay.New(g, generator, sink, ledger, relay.Options{
		TTL:       cfg.Gate.TTL,
		BotUserID: cfg.Slack.BotUserID,
	}, logger)

	cleanup := func() {
		if err := gateStore.Close(); err != nil {
			logger.Warn("closing gate store", "error", err)
		}
		if ledger != nil {
			if err := ledger.Close(); err != nil {
				logger.Warn("closing audit ledger", "error", err)
			}
		}
	}
	return r, cleanup, nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runHistory(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("audit ledger disabled: database.path not configured")
	}

	ledger, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening audit ledger: %w", err)
	}
	defer ledger.Close()

	records, err := ledger.ListRecent(ctx, 50)
	if err != nil {
		return fmt.Errorf("listing decisions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("no relay decisions recorded")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-10s  %s", rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Outcome, rec.EventID)
		if rec.Error != "" {
			line += "  error: " + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	configContent := `# beacon-relay configuration
# Generated by beacon-relay init

server:
  http_addr: "localhost:8080"

gate:
  store: "redis"          # redis, memory
  fail_mode: "open"       # open: proceed on store failure; closed: reject
  ttl: "1h"
  redis_addr: "${REDIS_HOST}:6379"
  redis_tls: true

bedrock:
  region: "us-east-1"
  mode: "agent"           # agent, knowledge_base
  agent_id: "${AGENT_ID}"
  agent_alias_id: "${AGENT_ID_ALIAS}"

slack:
  bot_token: "${SLACK_TOKEN}"
  bot_user_id: "${SLACK_BOT_USER_ID}"
  signing_secret: "${SLACK_SIGNING_SECRET}"

# database:
#   path: "/var/lib/beacon/relay.db"

logging:
  level: "info"
  format: "text"
`

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println("\nTo start the server:")
	fmt.Println("  beacon-relay serve")
	return nil
}
