package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/services"
)

type FriendHandler struct {
	friendService *services.FriendService
}

func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	friends, err := h.friendService.ListFriends(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "GetFriends", err)
		return
	}

	respondWithJSON(w, http.StatusOK, friends)
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req friendship.SendFriendRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fr, err := h.friendService.SendRequest(ctx, clerkID, req.UserID)
	if err != nil {
		respondWithServiceError(w, "SendFriendRequest", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, fr)
}

func (h *FriendHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	requests, err := h.friendService.ListSent(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "ListSentFriendRequests", err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

func (h *FriendHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	requests, err := h.friendService.ListReceived(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "ListReceivedFriendRequests", err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// resolveRequest runs one of the accept, reject or cancel actions on the
// request in the path.
func (h *FriendHandler) resolveRequest(op string, action func(ctx context.Context, clerkID, requestID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		clerkID, ok := authenticated(w, r)
		if !ok {
			return
		}

		if err := action(ctx, clerkID, mux.Vars(r)["id"]); err != nil {
			respondWithServiceError(w, op, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest("AcceptFriendRequest", h.friendService.AcceptRequest)(w, r)
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest("RejectFriendRequest", h.friendService.RejectRequest)(w, r)
}

func (h *FriendHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest("CancelFriendRequest", h.friendService.CancelRequest)(w, r)
}
