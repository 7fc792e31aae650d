// ABOUTME: Configuration loading and parsing for beacon-relay
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Gate store backends.
const (
	GateStoreRedis  = "redis"
	GateStoreMemory = "memory"
)

// Gate store-failure policies.
const (
	FailModeOpen   = "open"
	FailModeClosed = "closed"
)

// Generative backend modes.
const (
	BedrockModeAgent         = "agent"
	BedrockModeKnowledgeBase = "knowledge_base"
)

// Config represents the complete beacon-relay configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gate     GateConfig     `yaml:"gate"`
	Bedrock  BedrockConfig  `yaml:"bedrock"`
	Slack    SlackConfig    `yaml:"slack"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP trigger boundary configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// GateConfig holds the idempotency gate configuration.
type GateConfig struct {
	Store         string `yaml:"store"`     // "redis" or "memory"
	FailMode      string `yaml:"fail_mode"` // "open" (default) or "closed"
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisTLS      bool   `yaml:"redis_tls"`
	MemoryMaxKeys int    `yaml:"memory_max_keys"`

	TTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// BedrockConfig holds the generative backend configuration.
type BedrockConfig struct {
	Region          string `yaml:"region"`
	Mode            string `yaml:"mode"` // "agent" or "knowledge_base"
	AgentID         string `yaml:"agent_id"`
	AgentAliasID    string `yaml:"agent_alias_id"`
	KnowledgeBaseID string `yaml:"knowledge_base_id"`
	ModelARN        string `yaml:"model_arn"`
}

// SlackConfig holds the messaging sink configuration.
type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	BotUserID     string `yaml:"bot_user_id"`
	SigningSecret string `yaml:"signing_secret"`
}

// DatabaseConfig holds the audit ledger configuration. An empty path
// disables the ledger.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FailOpen reports whether the gate should treat store failures as
// first-seen. This is the documented default tradeoff: availability
// over strict duplicate prevention.
func (g GateConfig) FailOpen() bool {
	return g.FailMode != FailModeClosed
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in the configuration fields that have sensible
// defaults so a minimal config file stays minimal.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "localhost:8080"
	}
	if c.Gate.Store == "" {
		c.Gate.Store = GateStoreRedis
	}
	if c.Gate.FailMode == "" {
		c.Gate.FailMode = FailModeOpen
	}
	if c.Gate.TTLRaw == "" {
		c.Gate.TTLRaw = "1h"
	}
	if c.Gate.MemoryMaxKeys == 0 {
		c.Gate.MemoryMaxKeys = 100000
	}
	if c.Bedrock.Mode == "" {
		c.Bedrock.Mode = BedrockModeAgent
	}
	if c.Bedrock.Region == "" {
		c.Bedrock.Region = "us-east-1"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func (c *Config) parseDurations() error {
	ttl, err := time.ParseDuration(c.Gate.TTLRaw)
	if err != nil {
		return fmt.Errorf("parsing gate ttl %q: %w", c.Gate.TTLRaw, err)
	}
	c.Gate.TTL = ttl
	return nil
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Gate.Store {
	case GateStoreRedis:
		if c.Gate.RedisAddr == "" {
			return fmt.Errorf("gate.redis_addr is required when gate.store is %q", GateStoreRedis)
		}
	case GateStoreMemory:
	default:
		return fmt.Errorf("gate.store must be %q or %q, got %q", GateStoreRedis, GateStoreMemory, c.Gate.Store)
	}

	if c.Gate.FailMode != FailModeOpen && c.Gate.FailMode != FailModeClosed {
		return fmt.Errorf("gate.fail_mode must be %q or %q, got %q", FailModeOpen, FailModeClosed, c.Gate.FailMode)
	}

	if c.Gate.TTL <= 0 {
		return fmt.Errorf("gate.ttl must be positive, got %v", c.Gate.TTL)
	}

	switch c.Bedrock.Mode {
	case BedrockModeAgent:
		if c.Bedrock.AgentID == "" {
			return fmt.Errorf("bedrock.agent_id is required when bedrock.mode is %q", BedrockModeAgent)
		}
		if c.Bedrock.AgentAliasID == "" {
			return fmt.Errorf("bedrock.agent_alias_id is required when bedrock.mode is %q", BedrockModeAgent)
		}
	case BedrockModeKnowledgeBase:
		if c.Bedrock.KnowledgeBaseID == "" {
			return fmt.Errorf("bedrock.knowledge_base_id is required when bedrock.mode is %q", BedrockModeKnowledgeBase)
		}
		if c.Bedrock.ModelARN == "" {
			return fmt.Errorf("bedrock.model_arn is required when bedrock.mode is %q", BedrockModeKnowledgeBase)
		}
	default:
		return fmt.Errorf("bedrock.mode must be %q or %q, got %q", BedrockModeAgent, BedrockModeKnowledgeBase, c.Bedrock.Mode)
	}

	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}

	return nil
}
