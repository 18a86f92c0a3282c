package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setRequiredEnv sets the minimum environment for Load to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QDRANT_VECTOR_SIZE", "1024")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "docqa.db"))
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SemanticWeight != 0.6 {
		t.Errorf("SemanticWeight = %v, want 0.6", cfg.SemanticWeight)
	}
	if cfg.LexicalWeight != 0.4 {
		t.Errorf("LexicalWeight = %v, want 0.4", cfg.LexicalWeight)
	}
	if cfg.RetrieveK != 20 {
		t.Errorf("RetrieveK = %v, want 20", cfg.RetrieveK)
	}
	if cfg.RerankTopN != 7 {
		t.Errorf("RerankTopN = %v, want 7", cfg.RerankTopN)
	}
	if cfg.AgentTopK != 20 {
		t.Errorf("AgentTopK = %v, want 20", cfg.AgentTopK)
	}
	if cfg.MaxReruns != 1 {
		t.Errorf("MaxReruns = %v, want 1", cfg.MaxReruns)
	}
	if !cfg.GateUseJudge {
		t.Error("GateUseJudge = false, want true by default")
	}
	if cfg.QdrantVectorSize != 1024 {
		t.Errorf("QdrantVectorSize = %v, want 1024", cfg.QdrantVectorSize)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_MissingVectorSize(t *testing.T) {
	t.Setenv("QDRANT_VECTOR_SIZE", "")
	if _, err := Load(); err == nil {
		t.Error("Load() without QDRANT_VECTOR_SIZE should return error")
	}
}

func TestLoad_InvalidVectorSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "non-numeric", value: "abc"},
		{name: "zero", value: "0"},
		{name: "negative", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("QDRANT_VECTOR_SIZE", tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with QDRANT_VECTOR_SIZE=%q should return error", tt.value)
			}
		})
	}
}

func TestLoad_FusionWeights(t *testing.T) {
	tests := []struct {
		name    string
		sem     string
		lex     string
		wantErr bool
		wantSem float64
		wantLex float64
	}{
		{name: "custom weights", sem: "0.7", lex: "0.3", wantSem: 0.7, wantLex: 0.3},
		{name: "negative weight rejected", sem: "-0.1", lex: "0.5", wantErr: true},
		{name: "both zero rejected", sem: "0", lex: "0", wantErr: true},
		{name: "non-numeric rejected", sem: "heavy", lex: "0.4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("SEMANTIC_WEIGHT", tt.sem)
			t.Setenv("LEXICAL_WEIGHT", tt.lex)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("Load() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.SemanticWeight != tt.wantSem {
				t.Errorf("SemanticWeight = %v, want %v", cfg.SemanticWeight, tt.wantSem)
			}
			if cfg.LexicalWeight != tt.wantLex {
				t.Errorf("LexicalWeight = %v, want %v", cfg.LexicalWeight, tt.wantLex)
			}
		})
	}
}

func TestLoad_MaxReruns(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_RERUNS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxReruns != 3 {
		t.Errorf("MaxReruns = %v, want 3", cfg.MaxReruns)
	}

	t.Setenv("MAX_RERUNS", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load() with negative MAX_RERUNS should return error")
	}
}

func TestLoad_GateJudgeToggle(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GATE_USE_LLM_JUDGE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GateUseJudge {
		t.Error("GateUseJudge = true, want false")
	}
}

func TestLoad_LogLevel(t *testing.T) {
	tests := []struct {
		value   string
		want    slog.Level
		wantErr bool
	}{
		{value: "debug", want: slog.LevelDebug},
		{value: "warn", want: slog.LevelWarn},
		{value: "ERROR", want: slog.LevelError},
		{value: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("LOG_LEVEL", tt.value)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("Load() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.LogLevel != tt.want {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.want)
			}
		})
	}
}

func TestLoad_CreatesDataDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "docqa.db")
	t.Setenv("QDRANT_VECTOR_SIZE", "768")
	t.Setenv("DB_PATH", dbPath)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}
}
