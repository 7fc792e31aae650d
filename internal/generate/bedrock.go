// ABOUTME: AWS Bedrock implementation of the Generator interface.
// ABOUTME: Supports agent invocation (streamed chunks) and knowledge-base retrieve-and-generate.

package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/2389/beacon-relay/internal/config"
)

// Bedrock implements Generator against the Bedrock agent runtime. The
// underlying SDK client is safe for concurrent use and is created once
// at startup.
type Bedrock struct {
	client *bedrockagentruntime.Client
	cfg    config.BedrockConfig
	logger *slog.Logger
}

// NewBedrock creates a Bedrock generator for the configured region and
// mode. Credentials come from the default AWS chain (environment, IAM
// role, shared config).
func NewBedrock(ctx context.Context, cfg config.BedrockConfig, logger *slog.Logger) (*Bedrock, error) {
	if logger == nil {
		logger = slog.Default()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Bedrock{
		client: bedrockagentruntime.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: logger.With("component", "generate"),
	}, nil
}

// Generate dispatches on the configured mode.
func (b *Bedrock) Generate(ctx context.Context, req Request) (string, error) {
	if req.Input == "" {
		return "", fmt.Errorf("%w: empty input", ErrNoContent)
	}

	switch b.cfg.Mode {
	case config.BedrockModeKnowledgeBase:
		return b.retrieveAndGenerate(ctx, req)
	default:
		return b.invokeAgent(ctx, req)
	}
}

// invokeAgent calls the Bedrock agent and concatenates the streamed
// completion chunks into a single response string.
func (b *Bedrock) invokeAgent(ctx context.Context, req Request) (string, error) {
	out, err := b.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(b.cfg.AgentID),
		AgentAliasId: aws.String(b.cfg.AgentAliasID),
		SessionId:    aws.String(req.SessionID),
		InputText:    aws.String(req.Input),
		EnableTrace:  aws.Bool(true),
		EndSession:   aws.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("invoking agent %s: %w", b.cfg.AgentID, err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var completion strings.Builder
	for event := range stream.Events() {
		switch e := event.(type) {
		case *types.ResponseStreamMemberChunk:
			if len(e.Value.Bytes) > 0 {
				completion.Write(e.Value.Bytes)
			}
		case *types.ResponseStreamMemberTrace:
			b.logger.Debug("agent trace event", "session_id", req.SessionID)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("reading agent completion stream: %w", err)
	}

	text := strings.TrimSpace(completion.String())
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// retrieveAndGenerate queries the knowledge base with the configured
// model and returns the generated answer.
func (b *Bedrock) retrieveAndGenerate(ctx context.Context, req Request) (string, error) {
	out, err := b.client.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{
			Text: aws.String(req.Input),
		},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type: types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(b.cfg.KnowledgeBaseID),
				ModelArn:        aws.String(b.cfg.ModelARN),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("querying knowledge base %s: %w", b.cfg.KnowledgeBaseID, err)
	}

	if out.Output == nil || out.Output.Text == nil || strings.TrimSpace(*out.Output.Text) == "" {
		return "", ErrNoContent
	}
	return strings.TrimSpace(*out.Output.Text), nil
}
