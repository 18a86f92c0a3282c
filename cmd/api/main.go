package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa-ai/internal/agent"
	"docqa-ai/internal/config"
	"docqa-ai/internal/evidence"
	"docqa-ai/internal/http"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/prompt"
	"docqa-ai/internal/retrieval"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions against a private document corpus. Every answer
// is drafted from retrieved passages and verified claim by claim before it is
// returned.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: DocQA API
//   description: |
//     Question answering over an indexed document corpus with evidence
//     retrieval, relevance gating, and answer verification.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
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
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

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
	slog.Info("Database initialized", "path", cfg.DBPath)

	passageRepo := storage.NewPassageRepo(db)

	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	corpus := evidence.NewCorpusStore(embedder, vectorStore, cfg.QdrantCollection, passageRepo)
	if err := corpus.Refresh(ctx); err != nil {
		log.Fatalf("Failed to build lexical index: %v", err)
	}

	var prompts prompt.Resolver = prompt.NewBuiltinResolver()
	if cfg.PromptsDir != "" {
		prompts, err = prompt.NewFileResolver(cfg.PromptsDir)
		if err != nil {
			log.Fatalf("Failed to load prompt registry: %v", err)
		}
		slog.Info("Prompt registry loaded", "dir", cfg.PromptsDir)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	var judge llm.CompletionClient
	if cfg.GateUseJudge {
		judge = llmClient
	}

	retriever := retrieval.NewHybridRetriever(corpus, cfg.SemanticWeight, cfg.LexicalWeight)
	reranker := retrieval.NewReranker(nil)
	workflow := agent.NewWorkflow(
		retriever,
		reranker,
		agent.NewRelevanceChecker(judge, prompts),
		agent.NewResearcher(llmClient, prompts),
		agent.NewVerifier(llmClient, prompts),
		agent.WorkflowConfig{
			RetrieveK:  cfg.RetrieveK,
			RerankTopN: cfg.RerankTopN,
			AgentTopK:  cfg.AgentTopK,
			MaxReruns:  cfg.MaxReruns,
		},
	)
	slog.Info("Answer workflow initialized",
		"retrieve_k", cfg.RetrieveK,
		"rerank_top_n", cfg.RerankTopN,
		"agent_top_k", cfg.AgentTopK,
		"max_reruns", cfg.MaxReruns,
		"judge_enabled", judge != nil,
	)

	router := http.NewRouter(&http.Deps{
		Workflow:       workflow,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
