// ABOUTME: AWS Lambda entrypoint for beacon-relay behind API Gateway.
// ABOUTME: Builds all clients once at cold start and reuses them across invocations.

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/2389/beacon-relay/internal/config"
	"github.com/2389/beacon-relay/internal/event"
	"github.com/2389/beacon-relay/internal/gate"
	"github.com/2389/beacon-relay/internal/generate"
	"github.com/2389/beacon-relay/internal/notify"
	"github.com/2389/beacon-relay/internal/relay"
)

// handler holds the process-wide clients. Lambda reuses the process
// across invocations, so these are built exactly once.
type handler struct {
	relay  *relay.Relay
	logger *slog.Logger
}

func newHandler(ctx context.Context) (*handler, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var gateStore gate.Store
	switch cfg.Gate.Store {
	case config.GateStoreMemory:
		gateStore = gate.NewMemoryStore(cfg.Gate.MemoryMaxKeys)
	default:
		gateStore = gate.NewRedisStore(gate.RedisOptions{
			Addr:     cfg.Gate.RedisAddr,
			Password: cfg.Gate.RedisPassword,
			DB:       cfg.Gate.RedisDB,
			UseTLS:   cfg.Gate.RedisTLS,
		})
	}

	g := gate.New(gateStore, cfg.Gate.FailOpen(), logger)

	generator, err := generate.NewBedrock(ctx, cfg.Bedrock, logger)
	if err != nil {
		return nil, err
	}

	sink := notify.NewSlackSink(cfg.Slack.BotToken, logger)

	r := relay.New(g, generator, sink, nil, relay.Options{
		TTL:       cfg.Gate.TTL,
		BotUserID: cfg.Slack.BotUserID,
	}, logger)

	return &handler{relay: r, logger: logger}, nil
}

// handle processes one API Gateway request carrying a Slack event
// callback in its body.
func (h *handler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	env, err := event.ParseEnvelope([]byte(req.Body))
	if err != nil {
		h.logger.Warn("rejecting malformed event", "error", err)
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "malformed event payload"}), nil
	}

	switch env.Type {
	case event.TypeURLVerification:
		return jsonResponse(http.StatusOK, map[string]string{"challenge": env.Challenge}), nil

	case event.TypeEventCallback:
		res, err := h.relay.HandleEvent(ctx, &env.Event)
		if err != nil {
			h.logger.Error("event processing failed", "event_id", env.EventID, "error", err)
			return jsonResponse(http.StatusInternalServerError, map[string]string{"error": "event processing failed"}), nil
		}
		return jsonResponse(http.StatusOK, map[string]string{
			"status":   string(res.Status),
			"event_id": res.EventID,
		}), nil

	default:
		return jsonResponse(http.StatusOK, map[string]string{"status": "ignored"}), nil
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		slog.Error("initializing relay", "error", err)
		os.Exit(1)
	}
	lambda.Start(h.handle)
}
