package session

import (
	"testing"
	"time"

	"studyhighway/backend/internal/model"
)

// 2024-01-15 is a Monday.
var monday = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestDeriveDailyGoalsSingleSubject(t *testing.T) {
	goals := []model.WeeklyGoal{
		{
			ID:                "w1",
			Subjects:          []string{"Math"},
			WeeklyHours:       7,
			DailyDistribution: model.UniformDistribution(7),
			IsActive:          true,
		},
	}

	instances := DeriveDailyGoals(goals, monday)
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}

	got := instances[0]
	if got.Subject != "Math" {
		t.Fatalf("subject = %s", got.Subject)
	}
	if got.TargetMinutes != 60 {
		t.Fatalf("target = %f, want 60", got.TargetMinutes)
	}
	if got.CurrentMinutes != 0 || got.Status != StatusNotStarted || got.IsRunning {
		t.Fatalf("fresh instance not pristine: %+v", got)
	}
	if got.WeeklyGoalID != "w1" {
		t.Fatalf("weekly goal id = %s", got.WeeklyGoalID)
	}
}

func TestDeriveDailyGoalsSplitsAcrossSubjects(t *testing.T) {
	goals := []model.WeeklyGoal{
		{
			ID:          "w2",
			Subjects:    []string{"Math", "Portuguese"},
			WeeklyHours: 10,
			DailyDistribution: model.DailyDistribution{
				Monday: 1.5,
			},
			IsActive: true,
		},
	}

	instances := DeriveDailyGoals(goals, monday)
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	for _, instance := range instances {
		if instance.TargetMinutes != 45 {
			t.Fatalf("target = %f, want 45 (1.5h split across 2 subjects)", instance.TargetMinutes)
		}
	}
	if instances[0].ID == instances[1].ID {
		t.Fatal("instance ids collide")
	}
}

func TestDeriveDailyGoalsSkipsInactiveAndZeroDays(t *testing.T) {
	goals := []model.WeeklyGoal{
		{
			ID:                "inactive",
			Subjects:          []string{"Math"},
			DailyDistribution: model.UniformDistribution(7),
			IsActive:          false,
		},
		{
			ID:                "restday",
			Subjects:          []string{"Law"},
			DailyDistribution: model.DailyDistribution{Sunday: 2},
			IsActive:          true,
		},
	}

	if instances := DeriveDailyGoals(goals, monday); len(instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(instances))
	}

	sunday := monday.AddDate(0, 0, -1)
	instances := DeriveDailyGoals(goals, sunday)
	if len(instances) != 1 || instances[0].Subject != "Law" {
		t.Fatalf("sunday derivation wrong: %+v", instances)
	}
	if instances[0].TargetMinutes != 120 {
		t.Fatalf("sunday target = %f, want 120", instances[0].TargetMinutes)
	}
}

func TestDeriveDailyGoalsIsPure(t *testing.T) {
	goals := []model.WeeklyGoal{
		{
			ID:                "w1",
			Subjects:          []string{"Math"},
			DailyDistribution: model.UniformDistribution(7),
			IsActive:          true,
		},
	}

	first := DeriveDailyGoals(goals, monday)
	second := DeriveDailyGoals(goals, monday)
	if len(first) != len(second) {
		t.Fatalf("derivation not stable: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("instance %d differs between runs", i)
		}
	}
}
