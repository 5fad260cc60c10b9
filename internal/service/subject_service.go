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

// SubjectService manages subjects, topics, and the append-only study
// record log behind them.
type SubjectService struct {
	subjectRepo *repository.SubjectRepository
}

type ImportResult struct {
	Subjects []model.Subject `json:"subjects"`
	Skipped  []string        `json:"skipped,omitempty"`
}

type RecordInput struct {
	TimeSpent         float64
	QuestionsAnswered int
	QuestionsCorrect  int
	Notes             string
}

// PerformanceView is the aggregate consumed by the analytics screen.
type PerformanceView struct {
	TotalTime        float64             `json:"totalTime"`
	TotalQuestions   int                 `json:"totalQuestions"`
	TotalCorrect     int                 `json:"totalCorrect"`
	Accuracy         float64             `json:"accuracy"`
	TimeDistribution []metrics.TimeShare `json:"timeDistribution"`
}

func NewSubjectService(subjectRepo *repository.SubjectRepository) *SubjectService {
	return &SubjectService{subjectRepo: subjectRepo}
}

// Import parses the bulk text format and stores the resulting subjects.
// Malformed entries are skipped and reported back, matching the lenient
// import policy of the entry form.
func (s *SubjectService) Import(ctx context.Context, userID, bulkText string) (*ImportResult, *apperrors.APIError) {
	entries, skipped := bulkparse.Subjects(bulkText)
	if len(entries) == 0 {
		return nil, apperrors.BadRequest("invalid_format", "use the format Subject:topic1,topic2;Subject2:topic1")
	}

	now := time.Now().UTC()
	subjects := make([]model.Subject, 0, len(entries))
	for _, entry := range entries {
		subject := model.Subject{
			ID:         uuid.NewString(),
			UserID:     userID,
			Name:       entry.Name,
			Importance: model.ImportanceMedium,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		for _, topicName := range entry.Topics {
			subject.Topics = append(subject.Topics, model.Topic{
				ID:        uuid.NewString(),
				SubjectID: subject.ID,
				Name:      topicName,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		subjects = append(subjects, subject)
	}

	if err := s.subjectRepo.CreateBatch(ctx, subjects); err != nil {
		return nil, apperrors.Internal("failed to store subjects")
	}
	return &ImportResult{Subjects: subjects, Skipped: skipped}, nil
}

// List returns the user's subjects filtered by a search query and an
// importance level, with totals recomputed from the child topics.
func (s *SubjectService) List(ctx context.Context, userID, search, importance string, withRecords bool) ([]model.Subject, *apperrors.APIError) {
	subjects, err := s.subjectRepo.ListByUser(ctx, userID, withRecords)
	if err != nil {
		return nil, apperrors.Internal("failed to list subjects")
	}

	search = strings.ToLower(strings.TrimSpace(search))
	filtered := make([]model.Subject, 0, len(subjects))
	for i := range subjects {
		subject := subjects[i]
		if importance != "" && subject.Importance != importance {
			continue
		}
		if search != "" && !matchesSearch(subject, search) {
			continue
		}

		for j := range subject.Topics {
			topic := &subject.Topics[j]
			topic.Accuracy = metrics.Accuracy(topic.QuestionsCorrect, topic.QuestionsAnswered)
		}
		metrics.SubjectTotals(&subject)
		filtered = append(filtered, subject)
	}
	return filtered, nil
}

func (s *SubjectService) UpdateSubject(ctx context.Context, userID, subjectID, name, importance string) *apperrors.APIError {
	if strings.TrimSpace(name) == "" {
		return apperrors.BadRequest("invalid_name", "subject name is required")
	}
	if !model.ValidImportance(importance) {
		return apperrors.BadRequest("invalid_importance", "importance must be one of high, medium, low")
	}

	err := s.subjectRepo.UpdateSubject(ctx, userID, subjectID, strings.TrimSpace(name), importance)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("subject_not_found", "subject not found")
	}
	if err != nil {
		return apperrors.Internal("failed to update subject")
	}
	return nil
}

func (s *SubjectService) DeleteSubject(ctx context.Context, userID, subjectID string) *apperrors.APIError {
	err := s.subjectRepo.DeleteSubject(ctx, userID, subjectID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("subject_not_found", "subject not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete subject")
	}
	return nil
}

func (s *SubjectService) UpdateTopic(ctx context.Context, userID, subjectID, topicID, name string) *apperrors.APIError {
	if strings.TrimSpace(name) == "" {
		return apperrors.BadRequest("invalid_name", "topic name is required")
	}

	err := s.subjectRepo.UpdateTopicName(ctx, userID, subjectID, topicID, strings.TrimSpace(name))
	if err == repository.ErrNotFound {
		return apperrors.NotFound("topic_not_found", "topic not found")
	}
	if err != nil {
		return apperrors.Internal("failed to update topic")
	}
	return nil
}

func (s *SubjectService) DeleteTopic(ctx context.Context, userID, subjectID, topicID string) *apperrors.APIError {
	err := s.subjectRepo.DeleteTopic(ctx, userID, subjectID, topicID)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("topic_not_found", "topic not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete topic")
	}
	return nil
}

// AppendRecord validates and stores a study record, updating the
// topic's cumulative counters in the same transaction. The topic is
// returned with its recomputed accuracy.
func (s *SubjectService) AppendRecord(ctx context.Context, userID, subjectID, topicID string, input RecordInput) (*model.Topic, *apperrors.APIError) {
	tx, err := s.subjectRepo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	topic, err := s.subjectRepo.GetTopicTx(ctx, tx, userID, subjectID, topicID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("topic_not_found", "topic not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load topic")
	}

	record := model.StudyRecord{
		ID:                uuid.NewString(),
		TopicID:           topicID,
		Date:              time.Now().UTC(),
		TimeSpent:         input.TimeSpent,
		QuestionsAnswered: input.QuestionsAnswered,
		QuestionsCorrect:  input.QuestionsCorrect,
		Notes:             input.Notes,
	}

	if err := metrics.AppendStudyRecord(topic, record); err != nil {
		return nil, apperrors.BadRequest("invalid_record", err.Error())
	}

	if err := s.subjectRepo.InsertRecordTx(ctx, tx, &record); err != nil {
		return nil, apperrors.Internal("failed to store record")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit record")
	}
	return topic, nil
}

// Performance aggregates every topic of every subject into the overall
// study totals and the per-topic time distribution.
func (s *SubjectService) Performance(ctx context.Context, userID string) (*PerformanceView, *apperrors.APIError) {
	subjects, err := s.subjectRepo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, apperrors.Internal("failed to load subjects")
	}

	var view PerformanceView
	var topics []model.Topic
	for i := range subjects {
		metrics.SubjectTotals(&subjects[i])
		view.TotalTime += subjects[i].TotalTime
		view.TotalQuestions += subjects[i].TotalQuestions
		view.TotalCorrect += subjects[i].TotalCorrect
		topics = append(topics, subjects[i].Topics...)
	}
	view.Accuracy = metrics.Accuracy(view.TotalCorrect, view.TotalQuestions)
	view.TimeDistribution = metrics.TimeDistribution(topics)
	return &view, nil
}

func matchesSearch(subject model.Subject, search string) bool {
	if strings.Contains(strings.ToLower(subject.Name), search) {
		return true
	}
	for _, topic := range subject.Topics {
		if strings.Contains(strings.ToLower(topic.Name), search) {
			return true
		}
	}
	return false
}
