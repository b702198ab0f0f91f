package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/report-ai/cli/config"
	"github.com/report-ai/cli/internal/analysis"
	"github.com/report-ai/cli/internal/criteria"
	"github.com/report-ai/cli/internal/db"
	"github.com/report-ai/cli/internal/documents"
	"github.com/report-ai/cli/internal/embeddings"
	"github.com/report-ai/cli/internal/index"
	"github.com/report-ai/cli/internal/logging"
	"github.com/report-ai/cli/internal/mediascan"
	"github.com/report-ai/cli/internal/ollama"
	"github.com/report-ai/cli/internal/tui"
)

func main() {
	var (
		migrateFlag     = flag.Bool("migrate", false, "Run database migrations")
		criteriaFile    = flag.String("load-criteria", "", "Load a JSON criteria file and exit")
		criteriaVersion = flag.String("criteria-version", "v1", "Version to load criteria under")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Run migrations if requested
	if *migrateFlag {
		if err := runMigrations(cfg.Database.ConnectionString); err != nil {
			fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal, so logs go to a file
	if err := logging.Init(cfg.Paths.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	// Ensure documents directory exists
	if err := os.MkdirAll(cfg.Paths.DocumentsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating documents directory: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(cfg.Database.ConnectionString)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	criteriaStore := criteria.NewStore(database, cfg.Criteria.WeightTolerance)

	// Load criteria and exit when requested
	if *criteriaFile != "" {
		if err := criteriaStore.LoadFile(context.Background(), *criteriaFile, *criteriaVersion); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading criteria: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Criteria loaded as version %s\n", *criteriaVersion)
		return
	}

	processor, err := documents.NewProcessor(
		database,
		cfg.Paths.DocumentsDir,
		cfg.Processing.Language,
		cfg.Processing.WindowSize,
		cfg.Processing.WindowOverlap,
		cfg.Processing.ParseWorkers,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating processor: %v\n", err)
		os.Exit(1)
	}

	embedder := embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Embeddings.TextModel)
	indexer := index.NewIndexer(
		database,
		embedder,
		cfg.Processing.ParseWorkers,
		time.Duration(cfg.Processing.SearchTimeoutS)*time.Second,
	)

	llm := ollama.NewClient(cfg.Ollama.BaseURL)
	modelSelector := ollama.NewModelSelector(llm)

	// Resolve the generation model up front; fall back to the configured
	// name when Ollama is unreachable so the TUI still starts.
	model := cfg.Ollama.DefaultModel
	if resolved, err := modelSelector.GetDefaultModel(context.Background(), model); err == nil {
		model = resolved
	} else {
		logging.Warnf("could not resolve generation model: %v", err)
	}

	media := mediascan.NewStore(database)
	retriever := analysis.NewRetriever(indexer, cfg.Processing.TopK)
	prompts := analysis.NewPromptBuilder(0)
	runner := analysis.NewRunner(database, retriever, prompts, media, llm, model, 0)

	app := tui.NewApp(cfg, database, processor, indexer, criteriaStore, media, runner, modelSelector)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// runMigrations runs database migrations
func runMigrations(connString string) error {
	database, err := db.New(connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	migrationDir := "migrations"
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		// Try relative to executable
		exePath, err := os.Executable()
		if err == nil {
			migrationDir = filepath.Join(filepath.Dir(exePath), "..", "migrations")
		}
	}

	fmt.Printf("Note: Please run migrations manually:\n")
	fmt.Printf("  psql postgres -f %s\n", filepath.Join(migrationDir, "00001_init_schema.up.sql"))
	fmt.Printf("Or install pgvector extension: CREATE EXTENSION IF NOT EXISTS vector;\n")

	return nil
}
