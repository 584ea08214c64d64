// Package config defines the YAML configuration surface and its defaults.
// Load starts from Default and overlays the file, so a config file only
// needs to name what differs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML support for strings like "20s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std converts to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration tree.
type Config struct {
	// DefaultPersonality is checked out for users with no history.
	DefaultPersonality string `yaml:"default_personality"`
	// PluginPersonality routes conversations through the plugin pipeline.
	PluginPersonality string `yaml:"plugin_personality"`
	// PersonalityDir holds one template file per personality name.
	PersonalityDir string `yaml:"personality_dir"`

	Prompts    PromptsConfig    `yaml:"prompts"`
	Dialog     DialogConfig     `yaml:"dialog"`
	Store      StoreConfig      `yaml:"store"`
	Completion CompletionConfig `yaml:"completion"`
	Plugins    PluginsConfig    `yaml:"plugins"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PromptsConfig points at the pipeline template files. Empty paths keep the
// built-in templates.
type PromptsConfig struct {
	Detect     string `yaml:"detect"`
	Synthesize string `yaml:"synthesize"`
}

// DialogConfig tunes the conversation manager.
type DialogConfig struct {
	MaxTokens              int  `yaml:"max_tokens"`
	RollbackProtectsSystem bool `yaml:"rollback_protects_system"`
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	// Backend is one of "memory", "file" or "redis".
	Backend string      `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig tunes the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// CompletionConfig tunes the completion client.
type CompletionConfig struct {
	// Provider is one of "openai" or "anthropic".
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	Temperature float64  `yaml:"temperature"`
	TopP        float64  `yaml:"top_p"`
	N           int      `yaml:"n"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     Duration `yaml:"timeout"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// PluginsConfig carries plugin credentials and shared tuning.
type PluginsConfig struct {
	NumResults int           `yaml:"num_results"`
	Google     GoogleConfig  `yaml:"google"`
	Wolfram    WolframConfig `yaml:"wolfram"`
}

// GoogleConfig holds programmable search credentials. The plugin is only
// registered when both fields are set.
type GoogleConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// WolframConfig holds the WolframAlpha application id. The plugin is only
// registered when it is set.
type WolframConfig struct {
	AppID string `yaml:"app_id"`
}

// LoggingConfig tunes the process logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Dialog: DialogConfig{
			MaxTokens: 3000,
		},
		Store: StoreConfig{
			Backend: "file",
			Dir:     "dialogs",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "chatmesh:dialog:",
			},
		},
		Completion: CompletionConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Temperature: 1.0,
			TopP:        1.0,
			N:           1,
			MaxTokens:   1000,
			Timeout:     Duration(20 * time.Second),
			MaxAttempts: 2,
		},
		Plugins: PluginsConfig{
			NumResults: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Completion.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown completion provider %q", c.Completion.Provider)
	}
	if c.Dialog.MaxTokens < 0 {
		return fmt.Errorf("dialog max_tokens must not be negative")
	}
	return nil
}
