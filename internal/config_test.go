package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Oracle.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want %q", cfg.Oracle.Provider, ProviderAnthropic)
	}
}

func TestOracleConfig_EmptyProviderDefaultsAnthropic(t *testing.T) {
	cfg := OracleConfig{Model: "m", MaxTokens: 100}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty provider should default: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want %q", cfg.Provider, ProviderAnthropic)
	}
}

func TestOracleConfig_OllamaNeedsHost(t *testing.T) {
	cfg := OracleConfig{Provider: ProviderOllama, Model: "llama3"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("ollama without host should fail")
	}
	if !strings.Contains(err.Error(), "host is empty") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Host = "http://localhost:11434"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("ollama with host should pass: %v", err)
	}
}

func TestOracleConfig_MissingModel(t *testing.T) {
	cfg := OracleConfig{Provider: ProviderAnthropic}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing model should fail validation")
	}
}

func TestRunsConfig_RequiresPaths(t *testing.T) {
	cfg := RunsConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty runs config should fail")
	}
	cfg = RunsConfig{Dir: "./runs", Catalog: "./guide.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("populated runs config should pass: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled || cfg.AuthEnabled() {
		t.Errorf("mode = %q, enabled = %v", cfg.Mode, cfg.AuthEnabled())
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeToken}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFullConfig_PropagatesSectionErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Oracle.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch oracle error")
	}
}
