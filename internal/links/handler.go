package links

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sundayezeilo/shortlink/internal/errx"
	"github.com/sundayezeilo/shortlink/internal/httpx"
)

// CreateRequest is the JSON body of POST /api/create.
type CreateRequest struct {
	URL string `json:"url"`
}

// CreateResponse is returned by POST /api/create.
type CreateResponse struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}

// InfoResponse is returned by GET /api/info/{code}.
type InfoResponse struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

const (
	msgMissingAuth  = "Missing or invalid authorization header"
	msgInvalidToken = "Invalid bearer token"
	msgNotFound     = "Link not found"
	msgDeleted      = "Link deleted"
)

// Handler serves the link HTTP API.
type Handler struct {
	registry Registry
	logger   *slog.Logger
	token    []byte
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Registry    Registry
	Logger      *slog.Logger
	BearerToken string // required by DeleteLink, compared byte for byte
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		registry: cfg.Registry,
		logger:   logger,
		token:    []byte(cfg.BearerToken),
	}
}

// CreateLink handles POST /api/create.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[CreateRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.registry.Create(ctx, req.URL)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "link created", "code", link.Code)
	httpx.WriteJSON(w, http.StatusOK, CreateResponse{Code: link.Code, URL: link.URL})
}

// LinkInfo handles GET /api/info/{code}.
func (h *Handler) LinkInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")
	logger := h.requestLogger(r).With("code", code)

	link, err := h.registry.Lookup(ctx, code)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, InfoResponse{
		Code:      link.Code,
		URL:       link.URL,
		CreatedAt: link.CreatedAt,
	})
}

// Redirect handles GET /{code}.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")
	logger := h.requestLogger(r).With("code", code)

	link, err := h.registry.Lookup(ctx, code)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.DebugContext(ctx, "redirecting", "url", link.URL, "referer", r.Referer())
	w.Header().Set("Location", link.URL)
	w.WriteHeader(http.StatusFound)
}

// DeleteLink handles DELETE /{code}. The caller must present the configured
// bearer token.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")
	logger := h.requestLogger(r).With("code", code)

	token, err := httpx.BearerToken(r)
	if err != nil {
		logger.WarnContext(ctx, "delete rejected", "error", err.Error())
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", msgMissingAuth, nil)
		return
	}
	if subtle.ConstantTimeCompare([]byte(token), h.token) != 1 {
		logger.WarnContext(ctx, "delete rejected", "error", "bearer token mismatch")
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", msgInvalidToken, nil)
		return
	}

	if err := h.registry.Delete(ctx, code); err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "link deleted")
	httpx.WriteMessage(w, http.StatusOK, msgDeleted)
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// handleError writes the response for a registry error. Storage details are
// logged but never written to the client.
func (h *Handler) handleError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid url", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorKindToCode(kind), "Invalid URL",
			map[string]string{"reason": rootCause(err).Error()})

	case errx.NotFound:
		logger.InfoContext(ctx, "link not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorKindToCode(kind), msgNotFound, nil)

	default:
		logger.ErrorContext(ctx, "link operation failed", logAttrs...)
		httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindToCode(kind),
			"Unable to process the request at this time", nil)
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
