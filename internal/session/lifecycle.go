package session

import (
	"fmt"
	"time"

	"studyhighway/backend/internal/model"
)

// DeriveDailyGoals expands the active weekly goals into the day's goal
// instances. The reference date picks the weekday allocation; an
// allocation of zero produces no instances for that goal. When a goal
// spans several subjects the day's hours are split evenly between
// them. The function is pure and re-runnable: callers replace the
// previous cycle wholesale whenever the goal set or the day changes.
func DeriveDailyGoals(weeklyGoals []model.WeeklyGoal, referenceDate time.Time) []DailyGoal {
	instances := make([]DailyGoal, 0, len(weeklyGoals))
	day := referenceDate.Weekday()

	for _, goal := range weeklyGoals {
		if !goal.IsActive {
			continue
		}
		hours := goal.DailyDistribution.Hours(day)
		if hours <= 0 || len(goal.Subjects) == 0 {
			continue
		}

		perSubject := hours / float64(len(goal.Subjects))
		for i, subject := range goal.Subjects {
			instances = append(instances, DailyGoal{
				ID:            fmt.Sprintf("%s-%s-%d", goal.ID, subject, i),
				WeeklyGoalID:  goal.ID,
				Subject:       subject,
				TargetMinutes: perSubject * 60,
				Status:        StatusNotStarted,
			})
		}
	}
	return instances
}
