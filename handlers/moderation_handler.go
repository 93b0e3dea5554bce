package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/services"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) HideAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	hidden, err := h.moderationService.HideAnswer(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "HideAnswer", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"hidden": hidden})
}

func (h *ModerationHandler) ReportAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	if err := h.moderationService.ReportAnswer(ctx, clerkID, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, "ReportAnswer", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BlockUser blocks the user in the path. The body names the answer whose
// thread gets hidden.
func (h *ModerationHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req friendship.BlockUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.moderationService.BlockUser(ctx, clerkID, mux.Vars(r)["id"], req.AnswerID); err != nil {
		respondWithServiceError(w, "BlockUser", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
