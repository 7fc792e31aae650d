// ABOUTME: HTTP trigger boundary: receives event callbacks and hands them to the relay.
// ABOUTME: Handles the Slack URL verification handshake and optional signature checks.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/beacon-relay/internal/event"
	"github.com/2389/beacon-relay/internal/relay"
)

// maxBodyBytes bounds inbound request bodies. Slack event callbacks are
// small; anything larger is not ours.
const maxBodyBytes = 1 << 20

// Handler is the part of the relay the server depends on.
type Handler interface {
	HandleEvent(ctx context.Context, ev *event.Event) (*relay.Result, error)
}

// Server exposes the trigger boundary over HTTP:
//
//   - POST /events  - Slack Events API callback
//   - GET  /health  - liveness check
type Server struct {
	handler    Handler
	verify     VerifyFunc
	httpServer *http.Server
	logger     *slog.Logger
}

// VerifyFunc authenticates an inbound request given its headers and raw
// body. nil disables verification.
type VerifyFunc func(header http.Header, body []byte) error

// New creates a server for the given listen address. verify may be nil
// when no signing secret is configured.
func New(addr string, handler Handler, verify VerifyFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		handler: handler,
		verify:  verify,
		logger:  logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves HTTP until the context is canceled, then drains with a
// bounded shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

// handleEvents handles POST /events requests.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "reading body")
		return
	}

	if s.verify != nil {
		if err := s.verify(r.Header, body); err != nil {
			s.logger.Warn("rejecting unverified request", "error", err)
			writeJSONError(w, http.StatusUnauthorized, "signature verification failed")
			return
		}
	}

	env, err := event.ParseEnvelope(body)
	if err != nil {
		s.logger.Warn("rejecting malformed event", "error", err)
		writeJSONError(w, http.StatusBadRequest, "malformed event payload")
		return
	}

	switch env.Type {
	case event.TypeURLVerification:
		writeJSON(w, http.StatusOK, map[string]string{"challenge": env.Challenge})

	case event.TypeEventCallback:
		res, err := s.handler.HandleEvent(r.Context(), &env.Event)
		if err != nil {
			s.logger.Error("event processing failed", "event_id", env.EventID, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "event processing failed")
			return
		}
		// Duplicates and ignored events also ack with 200: the request
		// succeeded, there was just nothing left to do.
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   string(res.Status),
			"event_id": res.EventID,
		})

	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	}
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
