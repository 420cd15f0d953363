package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/whackaword/internal/app"
)

// TapDependencies accepts taps for the running session.
type TapDependencies interface {
	// SubmitTap delivers a tap at most once per tap id. It reports true when
	// the id was seen before.
	SubmitTap(ctx context.Context, tapID, slotID string, token uint64) (bool, error)
}

// TapsHandler handles tap requests.
type TapsHandler struct {
	deps TapDependencies
}

// NewTapsHandler creates a new taps handler.
func NewTapsHandler(deps TapDependencies) *TapsHandler {
	return &TapsHandler{deps: deps}
}

// HandlePostTap handles POST /taps requests.
func (h *TapsHandler) HandlePostTap(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_tap"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	dup, err := h.deps.SubmitTap(r.Context(), req.TapID, req.Slot, req.Token)
	switch {
	case errors.Is(err, service.ErrUnknownSlot):
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapKind(op, ErrUnavailable, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	case dup:
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	}
}
