package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shared-clipboard/internal/health"
	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"
	"shared-clipboard/internal/store"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultLogCount     = 50
)

// Store is the part of the clipboard store the API needs.
type Store interface {
	Submit(raw string) (store.Entry, error)
	List() []store.Entry
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store        Store
	metrics      *metrics.Registry
	analyzer     *health.Analyzer
	logger       *logs.Logger
	validate     *validator.Validate
	encode       func(any) ([]byte, error)
	maxBodyBytes int64
	prometheus   http.Handler
}

// Option customises the Handler.
type Option func(*Handler)

// WithMaxBodyBytes caps the size of a submit request body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithPrometheus mounts a Prometheus exposition handler on /metrics/prometheus.
func WithPrometheus(handler http.Handler) Option {
	return func(h *Handler) {
		h.prometheus = handler
	}
}

// NewHandler creates a new API handler.
func NewHandler(
	st Store,
	reg *metrics.Registry,
	logger *logs.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		store:        st,
		metrics:      reg,
		analyzer:     health.NewAnalyzer(reg, logger),
		logger:       logger.With("api"),
		validate:     validator.New(),
		encode:       json.Marshal,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

/* ---------------- GET /api/clipboard ---------------- */

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	entries := h.store.List()
	if entries == nil {
		entries = []store.Entry{}
	}

	if err := writeJSON(w, http.StatusOK, entries, h.encode); err != nil {
		h.fail(w, r, err)
	}
}

/* ---------------- POST /api/clipboard ---------------- */

type submitRequest struct {
	Text string `json:"text" validate:"required"`
}

// decodeSubmitRequest parses the body as a JSON object, falling back to an
// empty object when it is missing or malformed. A non-string text field is
// read as "". A body over maxBodyBytes fails with ErrTextTooLarge.
func (h *Handler) decodeSubmitRequest(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	var payload map[string]any

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return submitRequest{}, ErrTextTooLarge
	}
	if err == nil {
		err = json.Unmarshal(body, &payload)
	}
	if err != nil {
		h.logger.Debug("submit body treated as empty object",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
	}

	text, _ := payload["text"].(string)
	return submitRequest{Text: strings.TrimSpace(text)}, nil
}

func (h *Handler) SubmitItem(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeSubmitRequest(w, r)
	if err != nil {
		h.metrics.Inc(metrics.RejectedTotal)
		writeError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.metrics.Inc(metrics.RejectedTotal)
		writeError(w, ErrEmptyText)
		return
	}

	entry, err := h.store.Submit(req.Text)
	if errors.Is(err, store.ErrInvalidInput) {
		writeError(w, ErrEmptyText)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("entry created",
		zap.Int64("id", entry.ID),
		zap.String("request_id", RequestIDFromContext(r.Context())),
	)

	if err := writeJSON(w, http.StatusOK, newSubmitResponse(entry), h.encode); err != nil {
		h.fail(w, r, err)
	}
}

/* ---------------- GET /metrics ---------------- */

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.metrics.Snapshot(), h.encode); err != nil {
		h.fail(w, r, err)
	}
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.analyzer.Analyze(), h.encode); err != nil {
		h.fail(w, r, err)
	}
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := defaultLogCount
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, ErrBadRequest)
			return
		}
		n = parsed
	}

	if err := writeJSON(w, http.StatusOK, h.logger.GetLast(n), h.encode); err != nil {
		h.fail(w, r, err)
	}
}

// fail logs err for operators and sends the generic 500 body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.Inc(metrics.HTTPInternalErrorsTotal)
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	writeError(w, ErrInternal.WithInternal(err))
}
