package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "studyhighway/backend/internal/errors"
	"studyhighway/backend/internal/metrics"
	"studyhighway/backend/internal/model"
	"studyhighway/backend/internal/repository"
)

const (
	DistributionUniform = "uniform"
	DistributionCustom  = "custom"
)

// GoalService manages weekly goals and keeps the session service's
// derived daily instances in sync with goal mutations.
type GoalService struct {
	goalRepo *repository.GoalRepository
	sessions *SessionService
}

type GoalInput struct {
	Subjects          []string
	WeeklyHours       float64
	DistributionType  string
	DailyDistribution model.DailyDistribution
	IsActive          *bool
}

// GoalView is a weekly goal with its derived progress percentage.
type GoalView struct {
	model.WeeklyGoal
	WeeklyProgress float64 `json:"weeklyProgress"`
}

func NewGoalService(goalRepo *repository.GoalRepository, sessions *SessionService) *GoalService {
	return &GoalService{goalRepo: goalRepo, sessions: sessions}
}

func (s *GoalService) List(ctx context.Context, userID string) ([]GoalView, *apperrors.APIError) {
	goals, err := s.goalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list weekly goals")
	}

	views := make([]GoalView, 0, len(goals))
	for _, goal := range goals {
		views = append(views, GoalView{
			WeeklyGoal:     goal,
			WeeklyProgress: metrics.WeeklyProgress(goal),
		})
	}
	return views, nil
}

func (s *GoalService) Create(ctx context.Context, userID string, input GoalInput) (*GoalView, *apperrors.APIError) {
	distribution, apiErr := validateGoalInput(input)
	if apiErr != nil {
		return nil, apiErr
	}

	now := time.Now().UTC()
	goal := model.WeeklyGoal{
		ID:                uuid.NewString(),
		UserID:            userID,
		Subjects:          input.Subjects,
		WeeklyHours:       input.WeeklyHours,
		DailyDistribution: distribution,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.goalRepo.Create(ctx, &goal); err != nil {
		return nil, apperrors.Internal("failed to create weekly goal")
	}
	s.sessions.Invalidate(userID)

	return &GoalView{WeeklyGoal: goal, WeeklyProgress: metrics.WeeklyProgress(goal)}, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID string, input GoalInput) (*GoalView, *apperrors.APIError) {
	distribution, apiErr := validateGoalInput(input)
	if apiErr != nil {
		return nil, apiErr
	}

	goal, err := s.goalRepo.GetByID(ctx, userID, goalID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("goal_not_found", "weekly goal not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load weekly goal")
	}

	goal.Subjects = input.Subjects
	goal.WeeklyHours = input.WeeklyHours
	goal.DailyDistribution = distribution
	if input.IsActive != nil {
		goal.IsActive = *input.IsActive
	}
	goal.UpdatedAt = time.Now().UTC()

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("goal_not_found", "weekly goal not found")
		}
		return nil, apperrors.Internal("failed to update weekly goal")
	}
	s.sessions.Invalidate(userID)

	return &GoalView{WeeklyGoal: *goal, WeeklyProgress: metrics.WeeklyProgress(*goal)}, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) *apperrors.APIError {
	err := s.goalRepo.Delete(ctx, userID, goalID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("goal_not_found", "weekly goal not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete weekly goal")
	}
	s.sessions.Invalidate(userID)
	return nil
}

// validateGoalInput checks the subject list and hours, and resolves the
// distribution: uniform recalculates from the weekly total, custom is
// taken as given with non-negative days.
func validateGoalInput(input GoalInput) (model.DailyDistribution, *apperrors.APIError) {
	if len(input.Subjects) == 0 {
		return model.DailyDistribution{}, apperrors.BadRequest("invalid_subjects", "select at least one subject")
	}
	for _, subject := range input.Subjects {
		if subject == "" {
			return model.DailyDistribution{}, apperrors.BadRequest("invalid_subjects", "subject names must not be empty")
		}
	}
	if input.WeeklyHours <= 0 {
		return model.DailyDistribution{}, apperrors.BadRequest("invalid_hours", "weekly hours must be positive")
	}

	switch input.DistributionType {
	case DistributionUniform, "":
		return model.UniformDistribution(input.WeeklyHours), nil
	case DistributionCustom:
		d := input.DailyDistribution
		for _, hours := range []float64{d.Monday, d.Tuesday, d.Wednesday, d.Thursday, d.Friday, d.Saturday, d.Sunday} {
			if hours < 0 {
				return model.DailyDistribution{}, apperrors.BadRequest("invalid_distribution", "daily hours must be non-negative")
			}
		}
		return d, nil
	default:
		return model.DailyDistribution{}, apperrors.BadRequest("invalid_distribution", "distribution type must be uniform or custom")
	}
}
