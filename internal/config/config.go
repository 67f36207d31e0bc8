// Package config loads the runtime's YAML configuration, the teacher's
// own nested-struct-with-yaml-tags shape (pkg/connector/config.go),
// with environment-variable overrides for secrets matching the
// teacher's OPENAI_API_KEY fallback idiom in connector.go.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for one bot process. Every key in
// §6's enumerated table is represented as a struct field.
type Config struct {
	BotName string `yaml:"bot_name"`

	Vector VectorConfig `yaml:"vector"`

	Embedding EmbeddingConfig `yaml:"embedding"`

	LLM LLMConfig `yaml:"llm"`

	Broker BrokerConfig `yaml:"broker"`

	SQL SQLConfig `yaml:"sql"`

	Autonomy AutonomyConfig `yaml:"autonomy"`

	WatchChannelIDs     []string `yaml:"watch_channel_ids"`
	BroadcastChannelIDs []string `yaml:"broadcast_channel_ids"`
	BlockedUserIDs      []string `yaml:"blocked_user_ids"`
	DMAllowedUserIDs    []string `yaml:"dm_allowed_user_ids"`

	AutonomousPostCooldownMinutes int `yaml:"autonomous_post_cooldown_minutes"`
	DailyImageQuota               int `yaml:"daily_image_quota"`
	DailyAudioQuota                int `yaml:"daily_audio_quota"`

	RobertaConfidenceThreshold float64 `yaml:"roberta_confidence_threshold"`

	RedisKeyPrefix string `yaml:"redis_key_prefix"`
}

// VectorConfig configures the external vector engine connection and
// per-bot collection naming.
type VectorConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	CollectionName string `yaml:"collection_name"`
	Dim            int    `yaml:"dim"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	ModelName string `yaml:"model_name"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
}

// LLMConfig configures the chat/tool-call provider.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

// BrokerConfig configures the Redis-compatible broker.
type BrokerConfig struct {
	URL string `yaml:"url"`
}

// SQLConfig configures the relational store for trust/relationship,
// chat-history and usage quotas.
type SQLConfig struct {
	URL string `yaml:"url"`
}

// AutonomyConfig holds every enable_* master and sub-switch from §6.
type AutonomyConfig struct {
	EnableAutonomousActivity  bool `yaml:"enable_autonomous_activity"`
	EnableAutonomousReplies   bool `yaml:"enable_autonomous_replies"`
	EnableAutonomousReactions bool `yaml:"enable_autonomous_reactions"`
	EnableAutonomousPosting   bool `yaml:"enable_autonomous_posting"`
	EnableChannelLurking      bool `yaml:"enable_channel_lurking"`
	EnableBotConversations    bool `yaml:"enable_bot_conversations"`
	EnableUniverseEvents      bool `yaml:"enable_universe_events"`
	EnableCrosspostDetection  bool `yaml:"enable_crosspost_detection"`
	EnableDMBlock             bool `yaml:"enable_dm_block"`
}

// defaults applied before YAML unmarshal overwrites them, matching
// fields the teacher leaves as documented zero-value-is-sane defaults.
func defaults() Config {
	return Config{
		Vector: VectorConfig{
			Host: "localhost",
			Port: 6334,
			Dim:  384,
		},
		Embedding: EmbeddingConfig{
			ModelName: "text-embedding-3-small",
		},
		Broker: BrokerConfig{
			URL: "redis://localhost:6379/0",
		},
		AutonomousPostCooldownMinutes: 10,
		DailyImageQuota:               10,
		DailyAudioQuota:               10,
		RobertaConfidenceThreshold:    0.6,
		RedisKeyPrefix:                "whisperengine:",
	}
}

// Load reads a YAML config file, applies defaults for anything the file
// doesn't set, overlays environment-variable overrides for secrets, and
// validates the fatal-at-startup keys from §7 kind 8 (bot_name,
// embedding, llm config missing).
func Load(path string) (Config, error) {
	cfg := defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Vector.CollectionName == "" {
		cfg.Vector.CollectionName = "whisperengine_memory_" + cfg.BotName
	}

	return cfg, nil
}

// applyEnvOverrides lets deployment secrets override file-based config,
// mirroring the teacher's os.Getenv("OPENAI_API_KEY") fallback.
func applyEnvOverrides(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv("WHISPERENGINE_LLM_KEY")); key != "" {
		cfg.LLM.Key = key
	}
	if key := strings.TrimSpace(os.Getenv("WHISPERENGINE_EMBEDDING_KEY")); key != "" {
		cfg.Embedding.APIKey = key
	}
	if url := strings.TrimSpace(os.Getenv("WHISPERENGINE_BROKER_URL")); url != "" {
		cfg.Broker.URL = url
	}
	if url := strings.TrimSpace(os.Getenv("WHISPERENGINE_SQL_URL")); url != "" {
		cfg.SQL.URL = url
	}
}

// validate enforces §7 kind 8 (Fatal): configuration missing for
// bot_name, embedding, or llm must fail at startup, never degrade.
func validate(cfg Config) error {
	var missing []string
	if strings.TrimSpace(cfg.BotName) == "" {
		missing = append(missing, "bot_name")
	}
	if strings.TrimSpace(cfg.Embedding.ModelName) == "" {
		missing = append(missing, "embedding.model_name")
	}
	if strings.TrimSpace(cfg.LLM.Provider) == "" || strings.TrimSpace(cfg.LLM.Model) == "" {
		missing = append(missing, "llm.provider/model")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}
