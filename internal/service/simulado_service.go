package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyhighway/backend/internal/bulkparse"
	apperrors "studyhighway/backend/internal/errors"
	"studyhighway/backend/internal/metrics"
	"studyhighway/backend/internal/model"
	"studyhighway/backend/internal/repository"
)

// SimuladoService manages mock exams. Result lists are always replaced
// wholesale and totals recomputed from the full list.
type SimuladoService struct {
	simuladoRepo *repository.SimuladoRepository
}

type SimuladoInput struct {
	Name    string
	Date    time.Time
	Results string
}

// SimuladoView is a mock exam with skipped bulk entries reported from
// the last parse.
type SimuladoView struct {
	model.Simulado
	Skipped []string `json:"skipped,omitempty"`
}

func NewSimuladoService(simuladoRepo *repository.SimuladoRepository) *SimuladoService {
	return &SimuladoService{simuladoRepo: simuladoRepo}
}

func (s *SimuladoService) List(ctx context.Context, userID string) ([]model.Simulado, *apperrors.APIError) {
	simulados, err := s.simuladoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list simulados")
	}
	for i := range simulados {
		applyTotals(&simulados[i])
	}
	return simulados, nil
}

func (s *SimuladoService) Create(ctx context.Context, userID string, input SimuladoInput) (*SimuladoView, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "simulado name is required")
	}

	results, skipped := bulkparse.SimuladoResults(input.Results)
	if len(results) == 0 {
		return nil, apperrors.BadRequest("invalid_format", "use the format Subject:total,correct,time;Subject2:total,correct,time")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now().UTC()
	simulado := model.Simulado{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Date:      date,
		Results:   results,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyTotals(&simulado)

	if err := s.simuladoRepo.Create(ctx, &simulado); err != nil {
		return nil, apperrors.Internal("failed to store simulado")
	}
	return &SimuladoView{Simulado: simulado, Skipped: skipped}, nil
}

func (s *SimuladoService) Update(ctx context.Context, userID, simuladoID string, input SimuladoInput) (*SimuladoView, *apperrors.APIError) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.BadRequest("invalid_name", "simulado name is required")
	}

	results, skipped := bulkparse.SimuladoResults(input.Results)
	if len(results) == 0 {
		return nil, apperrors.BadRequest("invalid_format", "use the format Subject:total,correct,time;Subject2:total,correct,time")
	}

	err := s.simuladoRepo.ReplaceResults(ctx, userID, simuladoID, name, results)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("simulado_not_found", "simulado not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update simulado")
	}

	simulado, err := s.simuladoRepo.GetByID(ctx, userID, simuladoID)
	if err != nil {
		return nil, apperrors.Internal("failed to reload simulado")
	}
	applyTotals(simulado)
	return &SimuladoView{Simulado: *simulado, Skipped: skipped}, nil
}

func (s *SimuladoService) Delete(ctx context.Context, userID, simuladoID string) *apperrors.APIError {
	err := s.simuladoRepo.Delete(ctx, userID, simuladoID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("simulado_not_found", "simulado not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete simulado")
	}
	return nil
}

func applyTotals(simulado *model.Simulado) {
	totals := metrics.SimuladoTotals(simulado.Results)
	simulado.TotalQuestions = totals.TotalQuestions
	simulado.TotalCorrect = totals.TotalCorrect
	simulado.TotalTime = totals.TotalTime
	simulado.Accuracy = totals.Accuracy
}
