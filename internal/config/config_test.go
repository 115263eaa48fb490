package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/diogo/wikichat/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != "http://127.0.0.1:5000/chat" {
		t.Errorf("Expected default endpoint, got '%s'", cfg.Endpoint)
	}

	if cfg.DefaultMode != "fast" {
		t.Errorf("Expected default mode to be 'fast', got '%s'", cfg.DefaultMode)
	}

	if cfg.Theme != "dark" {
		t.Errorf("Expected theme to be 'dark', got '%s'", cfg.Theme)
	}

	if cfg.Verbose != false {
		t.Errorf("Expected Verbose to be false, got %v", cfg.Verbose)
	}

	if cfg.Server.WikiResults != 3 || cfg.Server.WikiMaxChars != 4000 {
		t.Errorf("unexpected wiki defaults: %+v", cfg.Server)
	}

	if cfg.Server.MaxAgentSteps != 15 {
		t.Errorf("Expected MaxAgentSteps to be 15, got %d", cfg.Server.MaxAgentSteps)
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() returned relative path: %s", path)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("GetConfigPath() = %s, want config.json", path)
	}
}

func TestLoadConfigFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}

	if cfg.Endpoint != DefaultConfig().Endpoint {
		t.Errorf("Endpoint = %s, want default", cfg.Endpoint)
	}
	if cfg.Mode() != models.ModeFast {
		t.Errorf("Mode() = %s, want fast", cfg.Mode())
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "endpoint": "http://localhost:8080/chat",
  "default_mode": "thinking",
  "theme": "light",
  "server": {"fast_model": "gpt-4o-mini"}
}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}

	if cfg.Endpoint != "http://localhost:8080/chat" {
		t.Errorf("Endpoint = %s", cfg.Endpoint)
	}
	if cfg.Mode() != models.ModeThinking {
		t.Errorf("Mode() = %s, want thinking", cfg.Mode())
	}
	if cfg.Theme != "light" {
		t.Errorf("Theme = %s, want light", cfg.Theme)
	}
	if cfg.Server.FastModel != "gpt-4o-mini" {
		t.Errorf("Server.FastModel = %s", cfg.Server.FastModel)
	}
	// Keys absent from the file keep their defaults
	if cfg.Server.ThinkingModel != "gpt-4o" {
		t.Errorf("Server.ThinkingModel = %s, want default", cfg.Server.ThinkingModel)
	}
	if cfg.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want default", cfg.TimeoutSeconds)
	}
}

func TestLoadConfigFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if cfg.Endpoint != DefaultConfig().Endpoint {
		t.Error("expected defaults on error")
	}
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	t.Setenv("WIKICHAT_ENDPOINT", "http://env-host:9000/chat")
	t.Setenv("WIKICHAT_SERVER_ADDR", ":9999")

	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() returned error: %v", err)
	}

	if cfg.Endpoint != "http://env-host:9000/chat" {
		t.Errorf("Endpoint = %s, want env override", cfg.Endpoint)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %s, want env override", cfg.Server.Addr)
	}
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Theme = "light"
	cfg.DefaultMode = "thinking"

	if err := SaveConfigTo(path, cfg); err != nil {
		t.Fatalf("SaveConfigTo() returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	raw, _ := os.ReadFile(path)
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("saved file is not JSON: %v", err)
	}
	if decoded["theme"] != "light" {
		t.Errorf("saved theme = %v", decoded["theme"])
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Theme != "light" || loaded.Mode() != models.ModeThinking {
		t.Errorf("reloaded config = %+v", loaded)
	}
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(Config) bool
	}{
		{"endpoint", "http://h/chat", false, func(c Config) bool { return c.Endpoint == "http://h/chat" }},
		{"endpoint", "ftp://h", true, nil},
		{"default_mode", "thinking", false, func(c Config) bool { return c.DefaultMode == "thinking" }},
		{"default_mode", "slow", true, nil},
		{"theme", "light", false, func(c Config) bool { return c.Theme == "light" }},
		{"theme", "blue", true, nil},
		{"timeout_seconds", "30", false, func(c Config) bool { return c.TimeoutSeconds == 30 }},
		{"timeout_seconds", "-1", true, nil},
		{"verbose", "true", false, func(c Config) bool { return c.Verbose }},
		{"verbose", "maybe", true, nil},
		{"server.max_agent_steps", "0", true, nil},
		{"server.thinking_model", "gpt-4.1", false, func(c Config) bool { return c.Server.ThinkingModel == "gpt-4.1" }},
		{"nope", "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Set(%s, %s) did not apply: %+v", tt.key, tt.value, cfg)
			}
		})
	}
}

func TestServerConfig_OpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	var s ServerConfig
	if s.OpenAIKey() != "from-env" {
		t.Errorf("OpenAIKey() = %s, want env fallback", s.OpenAIKey())
	}

	s.OpenAIAPIKey = "from-config"
	if s.OpenAIKey() != "from-config" {
		t.Errorf("OpenAIKey() = %s, want config value", s.OpenAIKey())
	}
}
