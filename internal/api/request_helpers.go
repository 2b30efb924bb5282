package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/query"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// decodeRequest decodes and validates the request body into req. On failure
// it writes a 400 response and returns false: missingMessage when a required
// field is absent, MsgInvalidRequest when the body cannot be decoded.
func decodeRequest(
	w http.ResponseWriter,
	r *http.Request,
	req any,
	missingMessage string,
	fallback *slog.Logger,
) bool {
	log := logger.FromContextOrDefault(r.Context(), fallback)

	if err := shared.DecodeBody(r, req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, missingMessage, err)
		return false
	}

	return true
}

// pathID returns the {id} URL parameter. Malformed ids are reported as not
// found.
func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// selectParam returns the parsed select query parameter.
func selectParam(r *http.Request) map[string]any {
	return query.ParseObject(r.URL.Query().Get("select"))
}
