package config

import "testing"

func TestNewDefaults(t *testing.T) {
	settings, err := New("anthropic")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if settings.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q", settings.LLM.Provider)
	}
	if settings.LLM.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want 4096", settings.LLM.MaxTokens)
	}
	if settings.Agent.MaxSteps != 12 {
		t.Errorf("max steps = %d, want 12", settings.Agent.MaxSteps)
	}
	if settings.Agent.MaxParseFailures != 3 {
		t.Errorf("max parse failures = %d, want 3", settings.Agent.MaxParseFailures)
	}
	if settings.Synthesis.ChunkBudget != 8000 {
		t.Errorf("chunk budget = %d, want 8000", settings.Synthesis.ChunkBudget)
	}
	if settings.Synthesis.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", settings.Synthesis.Concurrency)
	}
}

func TestNewResolvesAliases(t *testing.T) {
	tests := map[string]string{
		"claude": "anthropic",
		"gpt":    "openai",
		"google": "gemini",
	}
	for alias, canonical := range tests {
		settings, err := New(alias)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", alias, err)
		}
		if settings.LLM.Provider != canonical {
			t.Errorf("New(%q).Provider = %q, want %q", alias, settings.LLM.Provider, canonical)
		}
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New("mystery"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AGENT_MAX_STEPS", "5")
	t.Setenv("SYNTHESIS_CHUNK_BUDGET", "1234")
	t.Setenv("LLM_TEMPERATURE", "0.2")

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if settings.Agent.MaxSteps != 5 {
		t.Errorf("max steps = %d, want 5", settings.Agent.MaxSteps)
	}
	if settings.Synthesis.ChunkBudget != 1234 {
		t.Errorf("chunk budget = %d, want 1234", settings.Synthesis.ChunkBudget)
	}
	if settings.LLM.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", settings.LLM.Temperature)
	}
}

func TestInvalidEnvValue(t *testing.T) {
	t.Setenv("AGENT_MAX_STEPS", "not-a-number")

	if _, err := New("openai"); err == nil {
		t.Fatal("expected error for invalid env value")
	}
}

func TestModelForEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "gpt-custom")

	model, err := ModelFor("openai")
	if err != nil {
		t.Fatalf("ModelFor failed: %v", err)
	}
	if model != "gpt-custom" {
		t.Errorf("model = %q, want gpt-custom", model)
	}
}
