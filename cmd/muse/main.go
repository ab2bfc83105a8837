package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/muse/internal/cli"
	"github.com/alexanderramin/muse/internal/llm"
	"github.com/alexanderramin/muse/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.muse/muse.db
	dbPath := os.Getenv("MUSE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".muse", "muse.db")
	}

	// Determine rules directory
	rulesDir := os.Getenv("MUSE_RULES")
	if rulesDir == "" {
		// Check for ./rules in current directory first (development)
		if stat, err := os.Stat("./rules"); err == nil && stat.IsDir() {
			rulesDir = "./rules"
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			rulesDir = filepath.Join(home, ".muse", "rules")
		}
	}

	// Open trigger-event / speed-sample database
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	// Advisory backend
	llmCfg := llm.LoadConfig()
	var client llm.Client
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		client = llm.NewOllamaClient(llmCfg, observer)
	} else {
		client = llm.NewDisabledClient()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	app := &cli.App{
		Store:       st,
		Client:      client,
		RulesDir:    rulesDir,
		Logger:      logger,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	return cli.NewRootCmd(app).Execute()
}

func logLevel() slog.Level {
	switch os.Getenv("MUSE_LOG") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
