package api

import (
	"context"
	"net/http"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/pkg/logger"
)

// ResultsDependencies defines the interface for reading vote results.
type ResultsDependencies interface {
	Results(ctx context.Context) (types.ResultsResponse, error)
}

// ResultsHandler handles results requests.
type ResultsHandler struct {
	deps   ResultsDependencies
	logger logger.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies, l logger.Logger) *ResultsHandler {
	if l == nil {
		l = logger.Get()
	}
	return &ResultsHandler{deps: deps, logger: l}
}

// HandleResults handles GET {base}/results requests.
func (h *ResultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_results"
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, op, http.MethodGet)
		return
	}

	res, err := h.deps.Results(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "results fetch failed", logger.Error(WrapKind(op, ErrInternal, err)))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if res.LanguageCounts == nil {
		res.LanguageCounts = map[string]int{}
	}
	if res.AllSubmissions == nil {
		res.AllSubmissions = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, res)
}
