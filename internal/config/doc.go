// Package config handles configuration loading for beacon-relay.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion, or entirely from the environment for the Lambda build.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	slack:
//	  bot_token: "${SLACK_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Idempotency gate:
//
//	gate:
//	  store: "redis"        # redis, memory
//	  fail_mode: "open"     # open, closed
//	  ttl: "1h"
//	  redis_addr: "${REDIS_HOST}:6379"
//	  redis_tls: true
//
// Generative backend:
//
//	bedrock:
//	  region: "us-east-1"
//	  mode: "agent"         # agent, knowledge_base
//	  agent_id: "${AGENT_ID}"
//	  agent_alias_id: "${AGENT_ID_ALIAS}"
//
// Messaging sink:
//
//	slack:
//	  bot_token: "${SLACK_TOKEN}"
//	  bot_user_id: "${SLACK_BOT_USER_ID}"
//	  signing_secret: "${SLACK_SIGNING_SECRET}"
//
// Audit ledger (optional):
//
//	database:
//	  path: "/var/lib/beacon/relay.db"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Environment-Only Loading
//
// FromEnv builds a Config from the flat environment variables the
// original serverless deployment used (REDIS_HOST, SLACK_TOKEN,
// AGENT_ID, ...). Used by cmd/beacon-lambda where no config file exists.
package config
