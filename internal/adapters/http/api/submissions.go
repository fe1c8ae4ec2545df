package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v2"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/internal/domain/validation"
	"github.com/okian/langvote/pkg/logger"
)

// SubmitDependencies defines the interface for vote submission.
type SubmitDependencies interface {
	// Submit upserts a vote keyed by email. The flag is true when an
	// existing vote was updated.
	Submit(ctx context.Context, in model.SubmissionInput) (model.Submission, bool, error)
}

// SubmissionsHandler handles vote submissions.
type SubmissionsHandler struct {
	deps         SubmitDependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmitDependencies, maxBodyBytes int64, l logger.Logger) *SubmissionsHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	if l == nil {
		l = logger.Get()
	}
	return &SubmissionsHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleSubmissions handles POST {base}/submissions requests.
func (h *SubmissionsHandler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, op, http.MethodPost)
		return
	}

	var req submissionRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Debug(r.Context(), "rejected submission", logger.Error(WrapKind(op, ErrBodyTooLarge, err)))
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		h.logger.Debug(r.Context(), "rejected submission", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	sub, updated, err := h.deps.Submit(r.Context(), req.input())
	switch {
	case errors.Is(err, validation.ErrMissingFields):
		writeError(w, http.StatusBadRequest, validation.MsgAllFieldsRequired)
		return
	case errors.Is(err, validation.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, validation.MsgInvalidEmailFormat)
		return
	case err != nil:
		h.logger.Error(r.Context(), "submission failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	httplog.LogEntrySetField(r.Context(), "submissionId", slog.StringValue(sub.ID))

	msg := types.MessageSubmitted
	if updated {
		msg = types.MessageUpdated
	}
	writeJSON(w, http.StatusOK, types.SubmitResponse{
		Success:      true,
		Message:      msg,
		SubmissionID: sub.ID,
	})
}
