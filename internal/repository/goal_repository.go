package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyhighway/backend/internal/model"
)

type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, goal *model.WeeklyGoal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO weekly_goals (
			id, user_id, weekly_hours,
			monday, tuesday, wednesday, thursday, friday, saturday, sunday,
			completed_hours, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID,
		goal.UserID,
		goal.WeeklyHours,
		goal.DailyDistribution.Monday,
		goal.DailyDistribution.Tuesday,
		goal.DailyDistribution.Wednesday,
		goal.DailyDistribution.Thursday,
		goal.DailyDistribution.Friday,
		goal.DailyDistribution.Saturday,
		goal.DailyDistribution.Sunday,
		goal.CompletedHours,
		boolToInt(goal.IsActive),
		goal.CreatedAt.UTC().Format(time.RFC3339Nano),
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create weekly goal: %w", err)
	}

	if err := insertGoalSubjects(ctx, tx, goal.ID, goal.Subjects); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create weekly goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) Update(ctx context.Context, goal *model.WeeklyGoal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE weekly_goals
		 SET weekly_hours = ?,
		     monday = ?, tuesday = ?, wednesday = ?, thursday = ?,
		     friday = ?, saturday = ?, sunday = ?,
		     is_active = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		goal.WeeklyHours,
		goal.DailyDistribution.Monday,
		goal.DailyDistribution.Tuesday,
		goal.DailyDistribution.Wednesday,
		goal.DailyDistribution.Thursday,
		goal.DailyDistribution.Friday,
		goal.DailyDistribution.Saturday,
		goal.DailyDistribution.Sunday,
		boolToInt(goal.IsActive),
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano),
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update weekly goal: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM weekly_goal_subjects WHERE goal_id = ?`, goal.ID); err != nil {
		return fmt.Errorf("clear goal subjects: %w", err)
	}
	if err := insertGoalSubjects(ctx, tx, goal.ID, goal.Subjects); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update weekly goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, userID, goalID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM weekly_goals WHERE id = ? AND user_id = ?`,
		goalID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete weekly goal: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GoalRepository) GetByID(ctx context.Context, userID, goalID string) (*model.WeeklyGoal, error) {
	goals, err := r.list(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, ErrNotFound
	}
	return &goals[0], nil
}

func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]model.WeeklyGoal, error) {
	return r.list(ctx, userID, "")
}

// AddCompletedHours credits timer contributions to the goal.
func (r *GoalRepository) AddCompletedHours(ctx context.Context, goalID string, hours float64) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE weekly_goals
		 SET completed_hours = completed_hours + ?,
		     updated_at = ?
		 WHERE id = ?`,
		hours,
		time.Now().UTC().Format(time.RFC3339Nano),
		goalID,
	)
	if err != nil {
		return fmt.Errorf("add completed hours: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GoalRepository) list(ctx context.Context, userID, goalID string) ([]model.WeeklyGoal, error) {
	query := `SELECT id, user_id, weekly_hours,
	                 monday, tuesday, wednesday, thursday, friday, saturday, sunday,
	                 completed_hours, is_active, created_at, updated_at
	          FROM weekly_goals
	          WHERE user_id = ?`
	args := []interface{}{userID}
	if goalID != "" {
		query += ` AND id = ?`
		args = append(args, goalID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list weekly goals: %w", err)
	}
	defer rows.Close()

	goals := make([]model.WeeklyGoal, 0)
	for rows.Next() {
		var goal model.WeeklyGoal
		var isActive int
		var createdAt, updatedAt string
		if err := rows.Scan(
			&goal.ID,
			&goal.UserID,
			&goal.WeeklyHours,
			&goal.DailyDistribution.Monday,
			&goal.DailyDistribution.Tuesday,
			&goal.DailyDistribution.Wednesday,
			&goal.DailyDistribution.Thursday,
			&goal.DailyDistribution.Friday,
			&goal.DailyDistribution.Saturday,
			&goal.DailyDistribution.Sunday,
			&goal.CompletedHours,
			&isActive,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan weekly goal: %w", err)
		}

		goal.IsActive = isActive != 0
		if goal.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse goal created_at: %w", err)
		}
		if goal.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse goal updated_at: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly goals: %w", err)
	}

	for i := range goals {
		subjects, err := r.goalSubjects(ctx, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].Subjects = subjects
	}
	return goals, nil
}

func (r *GoalRepository) goalSubjects(ctx context.Context, goalID string) ([]string, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT name FROM weekly_goal_subjects WHERE goal_id = ? ORDER BY position ASC`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goal subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan goal subject: %w", err)
		}
		subjects = append(subjects, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal subjects: %w", err)
	}
	return subjects, nil
}

func insertGoalSubjects(ctx context.Context, tx *sql.Tx, goalID string, subjects []string) error {
	for i, name := range subjects {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO weekly_goal_subjects (goal_id, position, name) VALUES (?, ?, ?)`,
			goalID,
			i,
			name,
		); err != nil {
			return fmt.Errorf("insert goal subject: %w", err)
		}
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
