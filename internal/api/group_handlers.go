/**
 * @description
 * HTTP handlers for the group endpoints and the activity feed. Handlers
 * parse the request, call into the service layer and translate its results
 * into the wire shapes the frontend expects.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bhupen98/dhukuti/internal/app"
	"github.com/bhupen98/dhukuti/internal/domain"
)

// Handler holds the application services the HTTP layer fronts.
type Handler struct {
	groups   *app.GroupService
	accounts *app.AccountService
}

// NewHandler creates a Handler with the given services.
func NewHandler(groups *app.GroupService, accounts *app.AccountService) *Handler {
	return &Handler{groups: groups, accounts: accounts}
}

// handleListGroups returns all groups with their (placeholder) member lists.
func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondWithJSON(w, http.StatusOK, groups)
}

// handleCreateGroup validates and persists a new group.
func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	group, err := h.groups.Create(r.Context(), req)
	if err != nil {
		var fieldErrs app.FieldErrors
		if errors.As(err, &fieldErrs) {
			respondWithJSON(w, http.StatusBadRequest, fieldErrs)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondWithJSON(w, http.StatusCreated, group)
}

// handleActivity returns the static activity feed.
func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.groups.Activity())
}
