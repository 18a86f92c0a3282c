package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	DocsPath           string
	PromptsDir         string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int

	// Retrieval settings.
	SemanticWeight float64 // fusion weight for vector similarity
	LexicalWeight  float64 // fusion weight for keyword statistics
	RetrieveK      int     // candidates drawn per retrieval signal
	RerankTopN     int     // candidates kept after reranking

	// Agent workflow settings.
	AgentTopK    int  // passages handed to the draft/verify agents
	MaxReruns    int  // re-draft budget after a failed verification
	GateUseJudge bool // enable the LLM relevance judge (stage 2)

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env at the project root
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		DBPath:             getEnv("DB_PATH", "./data/docqa.db"),
		DocsPath:           getEnv("DOCS_PATH", "./data/docs"),
		PromptsDir:         getEnv("PROMPTS_DIR", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "passages"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// QDRANT_VECTOR_SIZE must match the embedding model output dimension.
	// If it changes, the Qdrant collection has to be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	cfg.SemanticWeight, err = getEnvFloat("SEMANTIC_WEIGHT", 0.6)
	if err != nil {
		return nil, err
	}
	cfg.LexicalWeight, err = getEnvFloat("LEXICAL_WEIGHT", 0.4)
	if err != nil {
		return nil, err
	}
	if cfg.SemanticWeight < 0 || cfg.LexicalWeight < 0 {
		return nil, fmt.Errorf("fusion weights must be non-negative")
	}
	if cfg.SemanticWeight+cfg.LexicalWeight == 0 {
		return nil, fmt.Errorf("at least one fusion weight must be positive")
	}

	cfg.RetrieveK, err = getEnvInt("RETRIEVE_K", 20)
	if err != nil {
		return nil, err
	}
	cfg.RerankTopN, err = getEnvInt("RERANK_TOP_N", 7)
	if err != nil {
		return nil, err
	}
	cfg.AgentTopK, err = getEnvInt("AGENT_TOP_K", 20)
	if err != nil {
		return nil, err
	}
	cfg.MaxReruns, err = getEnvInt("MAX_RERUNS", 1)
	if err != nil {
		return nil, err
	}
	if cfg.MaxReruns < 0 {
		return nil, fmt.Errorf("MAX_RERUNS must be non-negative")
	}
	cfg.GateUseJudge = getEnvBool("GATE_USE_LLM_JUDGE", true)

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	// Create the data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", value)
	}
}
