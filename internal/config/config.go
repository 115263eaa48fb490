// Package config handles configuration for wikichat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/diogo/wikichat/internal/models"
)

// EnvPrefix is the prefix of environment overrides (WIKICHAT_ENDPOINT, ...)
const EnvPrefix = "WIKICHAT"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"`                           // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`             // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"`   // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap" mapstructure:"table_wrap"`                 // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" mapstructure:"inline_table_links"` // Render links inline in tables
}

// ServerConfig configures the `serve` backend
type ServerConfig struct {
	Addr          string  `json:"addr" mapstructure:"addr"`
	FastModel     string  `json:"fast_model" mapstructure:"fast_model"`
	FastTemp      float64 `json:"fast_temperature" mapstructure:"fast_temperature"`
	ThinkingModel string  `json:"thinking_model" mapstructure:"thinking_model"`
	ThinkingTemp  float64 `json:"thinking_temperature" mapstructure:"thinking_temperature"`
	OpenAIAPIKey  string  `json:"openai_api_key,omitempty" mapstructure:"openai_api_key"`
	MaxAgentSteps int     `json:"max_agent_steps" mapstructure:"max_agent_steps"`
	WikiResults   int     `json:"wiki_results" mapstructure:"wiki_results"`
	WikiMaxChars  int     `json:"wiki_max_chars" mapstructure:"wiki_max_chars"`
	WikiLanguage  string  `json:"wiki_language" mapstructure:"wiki_language"`
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the URL of the backend chat exchange
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	// DefaultMode is the mode a new session starts in
	DefaultMode string `json:"default_mode" mapstructure:"default_mode"`
	// Theme is "dark" or "light"
	Theme string `json:"theme" mapstructure:"theme"`
	// TimeoutSeconds bounds a single exchange; 0 disables the timeout
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	// Verbose enables debug logging and extra diagnostics.
	Verbose         bool           `json:"verbose" mapstructure:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard" mapstructure:"copy_to_clipboard"`
	LogFile         string         `json:"log_file,omitempty" mapstructure:"log_file"`
	Markdown        MarkdownConfig `json:"markdown" mapstructure:"markdown"`
	Server          ServerConfig   `json:"server" mapstructure:"server"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultServerConfig returns the default backend configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          models.DefaultListenAddr,
		FastModel:     "gpt-3.5-turbo",
		FastTemp:      0,
		ThinkingModel: "gpt-4o",
		ThinkingTemp:  0.3,
		MaxAgentSteps: 15,
		WikiResults:   3,
		WikiMaxChars:  4000,
		WikiLanguage:  "en",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		DefaultMode:     string(models.DefaultMode),
		Theme:           "dark",
		TimeoutSeconds:  120,
		Verbose:         false,
		CopyToClipboard: false,
		Markdown:        DefaultMarkdownConfig(),
		Server:          DefaultServerConfig(),
	}
}

// Mode returns the configured default mode, falling back to fast
func (c Config) Mode() models.Mode {
	m, err := models.ParseMode(c.DefaultMode)
	if err != nil {
		return models.DefaultMode
	}
	return m
}

// OpenAIKey returns the configured API key or OPENAI_API_KEY
func (c ServerConfig) OpenAIKey() string {
	if c.OpenAIAPIKey != "" {
		return os.ExpandEnv(c.OpenAIAPIKey)
	}
	return os.Getenv("OPENAI_API_KEY")
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".wikichat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the config may hold an API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the default log file path
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wikichat.log"), nil
}

// LoadConfig loads the configuration from the default location
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path. A missing file yields the
// defaults. WIKICHAT_* environment variables override file values.
func LoadConfigFrom(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("default_mode", d.DefaultMode)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("timeout_seconds", d.TimeoutSeconds)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("copy_to_clipboard", d.CopyToClipboard)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("markdown.style", d.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", d.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", d.Markdown.PreserveNewLines)
	v.SetDefault("markdown.table_wrap", d.Markdown.TableWrap)
	v.SetDefault("markdown.inline_table_links", d.Markdown.InlineTableLinks)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.fast_model", d.Server.FastModel)
	v.SetDefault("server.fast_temperature", d.Server.FastTemp)
	v.SetDefault("server.thinking_model", d.Server.ThinkingModel)
	v.SetDefault("server.thinking_temperature", d.Server.ThinkingTemp)
	v.SetDefault("server.openai_api_key", d.Server.OpenAIAPIKey)
	v.SetDefault("server.max_agent_steps", d.Server.MaxAgentSteps)
	v.SetDefault("server.wiki_results", d.Server.WikiResults)
	v.SetDefault("server.wiki_max_chars", d.Server.WikiMaxChars)
	v.SetDefault("server.wiki_language", d.Server.WikiLanguage)
	return v
}

// SaveConfig saves the configuration to the default location
func SaveConfig(cfg Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(configPath, cfg)
}

// SaveConfigTo writes the configuration as indented JSON
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SettableKeys returns the keys accepted by Set, in display order
func SettableKeys() []string {
	return []string{
		"endpoint",
		"default_mode",
		"theme",
		"timeout_seconds",
		"verbose",
		"copy_to_clipboard",
		"log_file",
		"markdown.style",
		"server.addr",
		"server.fast_model",
		"server.thinking_model",
		"server.openai_api_key",
		"server.max_agent_steps",
	}
}

// Set assigns a single key from its string form, validating the value
func (c *Config) Set(key, value string) error {
	switch key {
	case "endpoint":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("endpoint must be an http(s) URL: %s", value)
		}
		c.Endpoint = value
	case "default_mode":
		m, err := models.ParseMode(value)
		if err != nil {
			return err
		}
		c.DefaultMode = string(m)
	case "theme":
		if value != "dark" && value != "light" {
			return fmt.Errorf("theme must be dark or light: %s", value)
		}
		c.Theme = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("timeout_seconds must be a non-negative integer: %s", value)
		}
		c.TimeoutSeconds = n
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false: %s", value)
		}
		c.Verbose = b
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false: %s", value)
		}
		c.CopyToClipboard = b
	case "log_file":
		c.LogFile = value
	case "markdown.style":
		c.Markdown.Style = value
	case "server.addr":
		c.Server.Addr = value
	case "server.fast_model":
		c.Server.FastModel = value
	case "server.thinking_model":
		c.Server.ThinkingModel = value
	case "server.openai_api_key":
		c.Server.OpenAIAPIKey = value
	case "server.max_agent_steps":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("server.max_agent_steps must be a positive integer: %s", value)
		}
		c.Server.MaxAgentSteps = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
