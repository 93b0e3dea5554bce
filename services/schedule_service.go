package services

import (
	"context"

	"catchUpAPI/internal/schedule"
)

// ScheduleService exposes the friend-graph scheduler to the API.
type ScheduleService struct {
	runner *schedule.Runner
}

func NewScheduleService(runner *schedule.Runner) *ScheduleService {
	return &ScheduleService{runner: runner}
}

// Latest returns the last published order.
func (s *ScheduleService) Latest(ctx context.Context) (*schedule.Result, error) {
	return s.runner.Latest(ctx)
}

// Run computes and publishes a new order against a fresh snapshot.
func (s *ScheduleService) Run(ctx context.Context, opts schedule.RunOptions) (*schedule.Result, error) {
	return s.runner.Run(ctx, opts)
}
