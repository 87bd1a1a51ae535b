// Package api exposes the analysis pipeline over HTTP (server-sent events)
// and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Analyzer runs an analysis and streams its events. *pipeline.Orchestrator
// satisfies it.
type Analyzer interface {
	Stream(ctx context.Context, inputs []participant.Input, reference *participant.Input) <-chan pipeline.Event
}

// PostWriter drafts the post-event social post. *narrative.Writer satisfies it.
type PostWriter interface {
	Post(ctx context.Context, eventName string, top []participant.Participant, experience string) string
}

// Deps holds the handler's collaborators. Metrics may be nil, in which case
// /metrics is not mounted.
type Deps struct {
	Analyzer Analyzer
	Posts    PostWriter
	Metrics  http.Handler
}

// NewHandler returns the HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	r.Post("/api/participants", handleParticipants(deps.Analyzer))
	r.Post("/api/linkedin-post", handlePost(deps.Posts))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type participantsRequest struct {
	Participants *[]participant.Input `json:"participants"`
	UserProfile  *participant.Input   `json:"userProfile,omitempty"`
}

func handleParticipants(a Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req participantsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid participants data: %v", err)
			return
		}
		if req.Participants == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid participants data: participants array is required")
			return
		}
		if err := pipeline.Validate(*req.Participants); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		streamEvents(w, a.Stream(r.Context(), *req.Participants, req.UserProfile))
	}
}

// streamEvents writes each event as one "data: {...}" SSE frame and returns
// once the channel closes.
func streamEvents(w http.ResponseWriter, events <-chan pipeline.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "api_error", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			slog.Error("api: encoding stream event", "error", err)
			payload, _ = json.Marshal(pipeline.Event{Error: "failed to encode event"})
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			slog.Debug("api: client went away", "error", err)
			continue
		}
		flusher.Flush()
	}
}

type postRequest struct {
	HackathonName   string                     `json:"hackathonName"`
	EventName       string                     `json:"eventName"`
	HeavyHitters    *[]participant.Participant `json:"heavyHitters"`
	TopParticipants *[]participant.Participant `json:"topParticipants"`
	UserExperience  string                     `json:"userExperience"`
	Experience      string                     `json:"experience"`
}

var errMissingFields = errors.New("missing required fields")

func (p postRequest) resolve() (string, []participant.Participant, string, error) {
	name := p.HackathonName
	if name == "" {
		name = p.EventName
	}
	top := p.HeavyHitters
	if top == nil {
		top = p.TopParticipants
	}
	if name == "" || top == nil {
		return "", nil, "", errMissingFields
	}
	exp := p.UserExperience
	if exp == "" {
		exp = p.Experience
	}
	return name, *top, exp, nil
}

func handlePost(pw PostWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req postRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		name, top, exp, err := req.resolve()
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v: hackathonName and heavyHitters", err)
			return
		}

		post := pw.Post(r.Context(), name, top, exp)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"post": post})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
