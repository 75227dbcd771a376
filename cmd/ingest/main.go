// Command ingest loads plain-text documents into the knowledge base used
// for retrieval-augmented simplification. It uses the same configuration
// as the server for the LLM, embeddings and vector store.
//
// Usage:
//
//	ingest [flags] path...
//
// Each path is a .txt/.md file or a directory searched recursively.
//
// Flags:
//
//	-ingest-config  path to ingest YAML config file
//	-source         source label stored with every chunk (default: file name)
//	-limit-files    ingest at most N files (0 = all)
//	-dry-run        read and split files without embedding or storing
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/app"
	"github.com/heartmarshall/myenglish-adapter/internal/app/ingest"
	"github.com/heartmarshall/myenglish-adapter/internal/config"
)

func main() {
	ingestConfigFlag := flag.String("ingest-config", "", "path to ingest YAML config file")
	sourceFlag := flag.String("source", "", "source label for every chunk (default: file name)")
	limitFlag := flag.Int("limit-files", 0, "ingest at most N files (0 = all)")
	dryRunFlag := flag.Bool("dry-run", false, "split files without embedding or storing")
	flag.Parse()

	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	ingestCfg, err := ingest.LoadConfig(*ingestConfigFlag)
	if err != nil {
		logger.Error("load ingest config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// CLI flags override config.
	if args := flag.Args(); len(args) > 0 {
		ingestCfg.Paths = args
	}
	if *sourceFlag != "" {
		ingestCfg.Source = *sourceFlag
	}
	if *limitFlag > 0 {
		ingestCfg.LimitFiles = *limitFlag
	}
	if *dryRunFlag {
		ingestCfg.DryRun = true
	}
	ingestCfg.ChunkSize = appCfg.Ingest.ChunkSize
	ingestCfg.ChunkOverlap = appCfg.Ingest.ChunkOverlap

	if len(ingestCfg.Paths) == 0 {
		logger.Error("no input paths given")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Hour)
	defer cancel()

	svcs, err := app.NewServices(ctx, appCfg, logger)
	if err != nil {
		logger.Error("init services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer svcs.Close()

	pipeline := ingest.NewPipeline(logger, svcs.Knowledge, *ingestCfg)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		svcs.Close()
		os.Exit(1)
	}

	stored, skipped := 0, 0
	for _, r := range pipeline.Results() {
		stored += r.Stored
		skipped += r.Skipped
	}

	if pipeline.HasErrors() {
		logger.Warn("ingest completed with errors", slog.Int("stored", stored), slog.Int("skipped", skipped))
		svcs.Close()
		os.Exit(1)
	}

	logger.Info("ingest completed", slog.Int("files", len(pipeline.Results())), slog.Int("stored", stored), slog.Int("skipped", skipped))
}
