// ABOUTME: Environment-only configuration loader for the Lambda entrypoint.
// ABOUTME: Maps the original deployment's flat variable names onto Config.

package config

import (
	"fmt"
	"os"
)

// FromEnv builds a Config from flat environment variables, matching the
// variable names of the original serverless deployment. The same
// defaults and validation as Load apply.
//
// Recognized variables: REDIS_HOST, REDIS_PORT, REDIS_PASSWORD,
// GATE_TTL, GATE_FAIL_MODE, AWS_REGION, BEDROCK_MODE, AGENT_ID,
// AGENT_ID_ALIAS, KNOWLEDGE_BASE_ID, MODEL_ARN, SLACK_TOKEN,
// SLACK_BOT_USER_ID, SLACK_SIGNING_SECRET, HTTP_ADDR, DATABASE_PATH.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr: os.Getenv("HTTP_ADDR"),
		},
		Gate: GateConfig{
			FailMode:      os.Getenv("GATE_FAIL_MODE"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			TTLRaw:        os.Getenv("GATE_TTL"),
		},
		Bedrock: BedrockConfig{
			Region:          os.Getenv("AWS_REGION"),
			Mode:            os.Getenv("BEDROCK_MODE"),
			AgentID:         os.Getenv("AGENT_ID"),
			AgentAliasID:    os.Getenv("AGENT_ID_ALIAS"),
			KnowledgeBaseID: os.Getenv("KNOWLEDGE_BASE_ID"),
			ModelARN:        os.Getenv("MODEL_ARN"),
		},
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_TOKEN"),
			BotUserID:     os.Getenv("SLACK_BOT_USER_ID"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("DATABASE_PATH"),
		},
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.Gate.RedisAddr = fmt.Sprintf("%s:%s", host, port)
		// The shared cache endpoint speaks TLS in the original deployment.
		cfg.Gate.RedisTLS = true
	} else {
		cfg.Gate.Store = GateStoreMemory
	}

	cfg.applyDefaults()

	if err := cfg.parseDurations(); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
