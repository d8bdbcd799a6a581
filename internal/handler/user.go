package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starmatch/starmatch/internal/handler/dto"
	"github.com/starmatch/starmatch/internal/service"
)

// UserHandler handles registration and matching.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRegisterRequest(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "No JSON data received")
		return
	}

	user, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRegisterResponse(user))
}

// errNoJSONData covers absent, null, empty and non-object bodies.
var errNoJSONData = errors.New("no JSON data received")

// decodeRegisterRequest reads exactly one non-empty JSON object from body.
// Trailing data after the object is rejected.
func decodeRegisterRequest(body io.Reader) (*dto.RegisterRequest, error) {
	dec := json.NewDecoder(body)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errNoJSONData
		}
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return nil, errNoJSONData
	}

	var req dto.RegisterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Match handles GET /match/{id}.
func (h *UserHandler) Match(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User id must be an integer")
		return
	}

	matches, err := h.svc.Matches(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMatchListResponse(matches))
}

func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
	case errors.Is(err, service.ErrEmailRegistered):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.ErrorContext(r.Context(), "internal_error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
