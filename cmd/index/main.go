package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"docqa-ai/internal/config"
	"docqa-ai/internal/indexer"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// Indexes every markdown and PDF file under DOCS_PATH (or -docs) into the
// passage database and the Qdrant collection. Unchanged files are skipped.
func main() {
	docsFlag := flag.String("docs", "", "documents directory (overrides DOCS_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	docsPath := cfg.DocsPath
	if *docsFlag != "" {
		docsPath = *docsFlag
	}
	if _, err := os.Stat(docsPath); err != nil {
		log.Fatalf("Documents directory not usable: %v", err)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)

	pipeline := indexer.NewPipeline(
		storage.NewDocumentRepo(db),
		storage.NewPassageRepo(db),
		embedder,
		vectorStore,
		cfg.QdrantCollection,
	)

	slog.Info("Indexing documents", "path", docsPath)
	stats, err := pipeline.Run(ctx, docsPath)
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}
	slog.Info("Indexing complete",
		"indexed", stats.DocsIndexed,
		"skipped", stats.DocsSkipped,
		"chunks", stats.Chunks,
	)
}
