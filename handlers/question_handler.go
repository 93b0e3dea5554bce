package handlers

import (
	"context"
	"net/http"

	"catchUpAPI/internal/types/question"
	"catchUpAPI/services"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	batch, err := h.questionService.Today(ctx)
	if err != nil {
		respondWithServiceError(w, "QuestionsOfTheDay", err)
		return
	}

	respondWithJSON(w, http.StatusOK, batch)
}

// Current answers 204 when no question has started yet.
func (h *QuestionHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	current, err := h.questionService.Current(ctx)
	if err != nil {
		respondWithServiceError(w, "CurrentQuestion", err)
		return
	}
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondWithJSON(w, http.StatusOK, current)
}

func (h *QuestionHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	var req question.CreateBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	batch, err := h.questionService.CreateBatch(ctx, &req)
	if err != nil {
		respondWithServiceError(w, "CreateBatch", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, batch)
}
