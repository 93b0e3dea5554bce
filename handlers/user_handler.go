package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"catchUpAPI/internal/types/user"
	"catchUpAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterUser signs up the authenticated Clerk user. The Clerk ID always
// comes from the token, never from the body.
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req user.RegisterUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ClerkID = clerkID

	created, err := h.userService.RegisterUser(ctx, &req)
	if err != nil {
		respondWithServiceError(w, "RegisterUser", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "GetProfile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req user.RegisterPushTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.userService.RegisterPushToken(ctx, clerkID, req.Token); err != nil {
		respondWithServiceError(w, "RegisterPushToken", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout drops the caller's push token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	if err := h.userService.Logout(ctx, clerkID); err != nil {
		respondWithServiceError(w, "Logout", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	found, err := h.userService.GetUser(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetUser", err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *UserHandler) UserAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	chains, err := h.userService.UserAnswers(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "UserAnswers", err)
		return
	}

	respondWithJSON(w, http.StatusOK, chains)
}

func (h *UserHandler) AppearsIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	chains, err := h.userService.AppearsIn(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "AppearsIn", err)
		return
	}

	respondWithJSON(w, http.StatusOK, chains)
}

func (h *UserHandler) AnonAppearsIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'phone' is required")
		return
	}

	chains, err := h.userService.AnonAppearsIn(ctx, phone)
	if err != nil {
		respondWithServiceError(w, "AnonAppearsIn", err)
		return
	}

	respondWithJSON(w, http.StatusOK, chains)
}

func (h *UserHandler) LookupByPhone(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'phone' is required")
		return
	}

	found, err := h.userService.GetByPhone(ctx, phone)
	if err != nil {
		respondWithServiceError(w, "LookupByPhone", err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *UserHandler) LookupAnonByPhone(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'phone' is required")
		return
	}

	anon, err := h.userService.GetAnonByPhone(ctx, phone)
	if err != nil {
		respondWithServiceError(w, "LookupAnonByPhone", err)
		return
	}

	respondWithJSON(w, http.StatusOK, anon)
}

func (h *UserHandler) InContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req user.ContactsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	users, err := h.userService.InContacts(ctx, clerkID, req.PhoneNumbers)
	if err != nil {
		respondWithServiceError(w, "InContacts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}
