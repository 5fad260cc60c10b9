package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyhighway/backend/internal/model"
)

type SimuladoRepository struct {
	db *sql.DB
}

func NewSimuladoRepository(db *sql.DB) *SimuladoRepository {
	return &SimuladoRepository{db: db}
}

func (r *SimuladoRepository) Create(ctx context.Context, simulado *model.Simulado) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO simulados (id, user_id, name, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		simulado.ID,
		simulado.UserID,
		simulado.Name,
		simulado.Date.UTC().Format(time.RFC3339Nano),
		simulado.CreatedAt.UTC().Format(time.RFC3339Nano),
		simulado.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert simulado: %w", err)
	}

	if err := insertResults(ctx, tx, simulado.ID, simulado.Results); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create simulado: %w", err)
	}
	return nil
}

// ReplaceResults swaps the simulado's full result list. Totals are
// derived, so only the rows change.
func (r *SimuladoRepository) ReplaceResults(ctx context.Context, userID, simuladoID, name string, results []model.SimuladoResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE simulados SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name,
		time.Now().UTC().Format(time.RFC3339Nano),
		simuladoID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update simulado: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM simulado_results WHERE simulado_id = ?`, simuladoID); err != nil {
		return fmt.Errorf("clear simulado results: %w", err)
	}
	if err := insertResults(ctx, tx, simuladoID, results); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace results: %w", err)
	}
	return nil
}

func (r *SimuladoRepository) Delete(ctx context.Context, userID, simuladoID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM simulados WHERE id = ? AND user_id = ?`,
		simuladoID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete simulado: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SimuladoRepository) GetByID(ctx context.Context, userID, simuladoID string) (*model.Simulado, error) {
	simulados, err := r.list(ctx, userID, simuladoID)
	if err != nil {
		return nil, err
	}
	if len(simulados) == 0 {
		return nil, ErrNotFound
	}
	return &simulados[0], nil
}

func (r *SimuladoRepository) ListByUser(ctx context.Context, userID string) ([]model.Simulado, error) {
	return r.list(ctx, userID, "")
}

func (r *SimuladoRepository) list(ctx context.Context, userID, simuladoID string) ([]model.Simulado, error) {
	query := `SELECT id, user_id, name, date, created_at, updated_at
	          FROM simulados
	          WHERE user_id = ?`
	args := []interface{}{userID}
	if simuladoID != "" {
		query += ` AND id = ?`
		args = append(args, simuladoID)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list simulados: %w", err)
	}
	defer rows.Close()

	simulados := make([]model.Simulado, 0)
	for rows.Next() {
		var simulado model.Simulado
		var date, createdAt, updatedAt string
		if err := rows.Scan(
			&simulado.ID,
			&simulado.UserID,
			&simulado.Name,
			&date,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan simulado: %w", err)
		}
		if simulado.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse simulado date: %w", err)
		}
		if simulado.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse simulado created_at: %w", err)
		}
		if simulado.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse simulado updated_at: %w", err)
		}
		simulados = append(simulados, simulado)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulados: %w", err)
	}

	for i := range simulados {
		results, err := r.listResults(ctx, simulados[i].ID)
		if err != nil {
			return nil, err
		}
		simulados[i].Results = results
	}
	return simulados, nil
}

func (r *SimuladoRepository) listResults(ctx context.Context, simuladoID string) ([]model.SimuladoResult, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT subject, questions_total, questions_correct, time_spent
		 FROM simulado_results
		 WHERE simulado_id = ?
		 ORDER BY position ASC`,
		simuladoID,
	)
	if err != nil {
		return nil, fmt.Errorf("list simulado results: %w", err)
	}
	defer rows.Close()

	results := make([]model.SimuladoResult, 0)
	for rows.Next() {
		var result model.SimuladoResult
		if err := rows.Scan(
			&result.Subject,
			&result.QuestionsTotal,
			&result.QuestionsCorrect,
			&result.TimeSpent,
		); err != nil {
			return nil, fmt.Errorf("scan simulado result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulado results: %w", err)
	}
	return results, nil
}

func insertResults(ctx context.Context, tx *sql.Tx, simuladoID string, results []model.SimuladoResult) error {
	for i, result := range results {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO simulado_results (
				simulado_id, position, subject, questions_total, questions_correct, time_spent
			) VALUES (?, ?, ?, ?, ?, ?)`,
			simuladoID,
			i,
			result.Subject,
			result.QuestionsTotal,
			result.QuestionsCorrect,
			result.TimeSpent,
		); err != nil {
			return fmt.Errorf("insert simulado result: %w", err)
		}
	}
	return nil
}
