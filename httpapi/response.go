package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blob"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/collection"
	"github.com/blueprint-hub/hub-server/comment"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/ratelimit"
)

type errorResponse struct {
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors,omitempty"`
}

type automodErrors struct {
	FlaggedTexts  []moderation.FlaggedText  `json:"flagged_texts"`
	FlaggedImages []moderation.FlaggedImage `json:"flagged_images"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeDomainError maps errors returned by the content servers to responses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *gate.RejectionError
	if errors.As(err, &rejection) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "The content was flagged by automated moderation.",
			Errors: map[string]any{
				"automod": automodErrors{
					FlaggedTexts:  rejection.Verdict.FlaggedTexts,
					FlaggedImages: rejection.Verdict.FlaggedImages,
				},
			},
		})
		return
	}

	var imageNotFound *moderation.ImageNotFoundError
	if errors.As(err, &imageNotFound) {
		writeError(w, http.StatusBadRequest, imageNotFound.Error())
		return
	}

	switch {
	case errors.Is(err, blueprint.ErrTitleRequired),
		errors.Is(err, collection.ErrTitleRequired),
		errors.Is(err, collection.ErrBlueprintNotFound),
		errors.Is(err, comment.ErrBodyRequired),
		errors.Is(err, account.ErrInvalidUsername):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, blueprint.ErrNotFound),
		errors.Is(err, blob.ErrNotFound),
		errors.Is(err, collection.ErrNotFound),
		errors.Is(err, comment.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, account.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ratelimit.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests, try again later.")
	default:
		s.log.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
