package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/schedule"
	"catchUpAPI/services"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
}

func NewScheduleHandler(scheduleService *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func (h *ScheduleHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.scheduleService.Latest(ctx)
	if err != nil {
		respondWithServiceError(w, "LatestQuestionOrder", err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

type runScheduleRequest struct {
	Seed   *uuid.UUID `json:"seed,omitempty"`
	DryRun bool       `json:"dry_run"`
}

// Run computes a new order on demand. An empty body runs with random seeds.
func (h *ScheduleHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if _, ok := authenticated(w, r); !ok {
		return
	}

	var req runScheduleRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	res, err := h.scheduleService.Run(ctx, schedule.RunOptions{Seed: req.Seed, DryRun: req.DryRun})
	if err != nil {
		respondWithServiceError(w, "RunQuestionOrder", err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}
