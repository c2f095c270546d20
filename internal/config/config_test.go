package config

import (
	"testing"
	"time"
)

func TestLoadIncludesProcessingDefaults(t *testing.T) {
	t.Setenv("PROCESS_MAX_RETRIES", "")
	t.Setenv("PROCESS_RETRY_BACKOFF_SECONDS", "")
	t.Setenv("PROCESS_SOFT_TIME_LIMIT_SECONDS", "")
	t.Setenv("PROCESS_HARD_TIME_LIMIT_SECONDS", "")

	cfg := Load()
	if cfg.MaxRetries != 2 {
		t.Fatalf("expected default max retries 2, got %d", cfg.MaxRetries)
	}
	if cfg.RetryBackoff != 60*time.Second {
		t.Fatalf("expected default retry backoff 60s, got %v", cfg.RetryBackoff)
	}
	if cfg.SoftTimeLimit != 540*time.Second {
		t.Fatalf("expected default soft time limit 540s, got %v", cfg.SoftTimeLimit)
	}
	if cfg.HardTimeLimit != 600*time.Second {
		t.Fatalf("expected default hard time limit 600s, got %v", cfg.HardTimeLimit)
	}
}

func TestLoadParsesProcessingOverrides(t *testing.T) {
	t.Setenv("PROCESS_MAX_RETRIES", "4")
	t.Setenv("PROCESS_RETRY_BACKOFF_SECONDS", "5")
	t.Setenv("PROCESS_SOFT_TIME_LIMIT_SECONDS", "30")
	t.Setenv("LLM_REQUESTS_PER_MINUTE", "7")

	cfg := Load()
	if cfg.MaxRetries != 4 {
		t.Fatalf("expected max retries 4, got %d", cfg.MaxRetries)
	}
	if cfg.RetryBackoff != 5*time.Second {
		t.Fatalf("expected retry backoff 5s, got %v", cfg.RetryBackoff)
	}
	if cfg.SoftTimeLimit != 30*time.Second {
		t.Fatalf("expected soft time limit 30s, got %v", cfg.SoftTimeLimit)
	}
	if cfg.LLMRequestsPerMinute != 7 {
		t.Fatalf("expected llm requests per minute 7, got %d", cfg.LLMRequestsPerMinute)
	}
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("PROCESS_MAX_RETRIES", "many")

	cfg := Load()
	if cfg.MaxRetries != 2 {
		t.Fatalf("expected fallback max retries 2, got %d", cfg.MaxRetries)
	}
}
