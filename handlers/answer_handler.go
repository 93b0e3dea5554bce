package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"catchUpAPI/internal/types/answer"
	"catchUpAPI/services"
)

type AnswerHandler struct {
	answerService *services.AnswerService
	feedService   *services.FeedService
}

func NewAnswerHandler(answerService *services.AnswerService, feedService *services.FeedService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService, feedService: feedService}
}

func (h *AnswerHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	var req answer.AnswerQuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.answerService.AnswerQuestion(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, "AnswerQuestion", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AnswerHandler) AnswerExists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	exists, err := h.answerService.UserAnswerExists(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "UserAnswerExists", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *AnswerHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	chain, err := h.answerService.GetChain(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, "GetChain", err)
		return
	}

	respondWithJSON(w, http.StatusOK, chain)
}

func (h *AnswerHandler) AnswersOfTheDay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	answers, err := h.feedService.AnswersOfTheDay(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "AnswersOfTheDay", err)
		return
	}

	respondWithJSON(w, http.StatusOK, answers)
}

func (h *AnswerHandler) FriendFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}

	feed, err := h.feedService.FriendFeed(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, "FriendFeed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, feed)
}
