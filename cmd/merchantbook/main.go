package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/merchanthub/merchantbook/internal/config"
	"github.com/merchanthub/merchantbook/internal/extract"
	"github.com/merchanthub/merchantbook/internal/ledger"
	"github.com/merchanthub/merchantbook/internal/logger"
	"github.com/merchanthub/merchantbook/internal/storage"
	"github.com/merchanthub/merchantbook/internal/tui"
	"github.com/merchanthub/merchantbook/internal/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	// the TUI owns the terminal, so logs go to a file next to the database
	zlog := logger.New(filepath.Join(dataDir, "merchantbook.log"))

	// write the resolved defaults back on first run so the user has a file
	// to edit
	cfgPath := os.Getenv("MERCHANTBOOK_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join(os.Getenv("HOME"), ".config", "merchantbook", "config.toml")
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(cfg); err != nil {
			zlog.Warn().Err(err).Msg("could not write initial config")
		}
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := ledger.NewStore(ctx, storage.NewSQLite(db, zlog), zlog)

	extractor := buildExtractor(ctx, cfg.Extract, zlog)

	sales := workflow.NewDailyLog(store, extractor, ledger.CategorySale, zlog)
	purchases := workflow.NewDailyLog(store, extractor, ledger.CategoryPurchase, zlog)
	archive := workflow.NewArchive(store, cfg.Archive.PIN, zlog)

	p := tea.NewProgram(
		tui.New(ctx, cfg, store, sales, purchases, archive, zlog, nil),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func buildExtractor(ctx context.Context, cfg config.ExtractConfig, zlog zerolog.Logger) extract.BillExtractor {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		zlog.Warn().Msg("no Gemini API key, bill scanning disabled")
		return extract.Unavailable{}
	}
	g, err := extract.NewGemini(ctx, apiKey, cfg.Model, time.Duration(cfg.TimeoutSeconds)*time.Second)
	if err != nil {
		zlog.Warn().Err(err).Msg("gemini client init failed, bill scanning disabled")
		return extract.Unavailable{}
	}
	return g
}
