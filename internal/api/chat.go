package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/kalambet/csvchat/internal/intent"
	"github.com/kalambet/csvchat/internal/metrics"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Querier answers free-text queries over a loaded dataset.
type Querier interface {
	Interpret(text string) intent.Result
	Metadata() map[string][]string
}

// Deps holds what the HTTP handlers need.
type Deps struct {
	Interpreter Querier
	Metrics     *metrics.Metrics // optional; nil disables /metrics
	Token       string           // optional; when set, /chat and /api/metadata require it
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	Intent   intent.Intent  `json:"intent"`
	Response string         `json:"response"`
	Data     map[string]any `json:"data,omitempty"`
	// Text is the full display answer, tables included.
	Text     string         `json:"text"`
}

var chatSchema = mustSchema(`{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"]
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling schema: %v", err))
	}
	return s
}

// NewHandler returns the chat API: POST /chat, GET /api/metadata,
// GET /health and GET /metrics.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Post("/chat", handleChat(deps))
		r.Get("/api/metadata", handleMetadata(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "reading request body: %v", err)
			return
		}

		result, err := chatSchema.Validate(gojsonschema.NewBytesLoader(body))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if !result.Valid() {
			msgs := make([]string, len(result.Errors()))
			for i, e := range result.Errors() {
				msgs[i] = e.String()
			}
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %s", strings.Join(msgs, "; "))
			return
		}

		var req ChatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		start := time.Now()
		res := deps.Interpreter.Interpret(req.Text)
		deps.Metrics.ObserveQuery("http", string(res.Intent), string(res.Kind), time.Since(start))
		slog.Debug("query answered",
			"request_id", requestIDFrom(r.Context()),
			"intent", res.Intent,
			"kind", res.Kind,
		)

		writeJSON(w, ChatResponse{
			Intent:   res.Intent,
			Response: res.Response(),
			Data:     res.Data,
			Text:     res.String(),
		})
	}
}

func handleMetadata(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, deps.Interpreter.Metadata())
	}
}

type ctxKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// requestLogger tags each request with an X-Request-ID, reusing the
// caller's when present, and logs it once served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", id,
		)
	})
}

// writeJSON encodes v before touching the response, so an unencodable
// value becomes a 500 envelope instead of a truncated 200 body.
func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("encoding response", "error", err)
		httpError(w, http.StatusInternalServerError, "server_error", "could not encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(append(b, '\n'))
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
