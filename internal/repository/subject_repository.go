package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyhighway/backend/internal/model"
)

type SubjectRepository struct {
	db *sql.DB
}

func NewSubjectRepository(db *sql.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// CreateBatch inserts subjects with their topics in one transaction, so
// a bulk import is all-or-nothing at the storage level.
func (r *SubjectRepository) CreateBatch(ctx context.Context, subjects []model.Subject) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range subjects {
		subject := &subjects[i]
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO subjects (id, user_id, name, importance, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			subject.ID,
			subject.UserID,
			subject.Name,
			subject.Importance,
			subject.CreatedAt.UTC().Format(time.RFC3339Nano),
			subject.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}

		for _, topic := range subject.Topics {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO topics (
					id, subject_id, name, total_time, questions_answered, questions_correct,
					created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				topic.ID,
				subject.ID,
				topic.Name,
				topic.TotalTime,
				topic.QuestionsAnswered,
				topic.QuestionsCorrect,
				topic.CreatedAt.UTC().Format(time.RFC3339Nano),
				topic.UpdatedAt.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("insert topic: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subject batch: %w", err)
	}
	return nil
}

func (r *SubjectRepository) UpdateSubject(ctx context.Context, userID, subjectID, name, importance string) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE subjects SET name = ?, importance = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		name,
		importance,
		time.Now().UTC().Format(time.RFC3339Nano),
		subjectID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubjectRepository) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM subjects WHERE id = ? AND user_id = ?`,
		subjectID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubjectRepository) UpdateTopicName(ctx context.Context, userID, subjectID, topicID, name string) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE topics SET name = ?, updated_at = ?
		 WHERE id = ? AND subject_id IN (SELECT id FROM subjects WHERE id = ? AND user_id = ?)`,
		name,
		time.Now().UTC().Format(time.RFC3339Nano),
		topicID,
		subjectID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubjectRepository) DeleteTopic(ctx context.Context, userID, subjectID, topicID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM topics
		 WHERE id = ? AND subject_id IN (SELECT id FROM subjects WHERE id = ? AND user_id = ?)`,
		topicID,
		subjectID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTopicTx loads a topic row owned by the user, without its records.
func (r *SubjectRepository) GetTopicTx(ctx context.Context, tx *sql.Tx, userID, subjectID, topicID string) (*model.Topic, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT t.id, t.subject_id, t.name, t.total_time, t.questions_answered, t.questions_correct,
		        t.created_at, t.updated_at
		 FROM topics t
		 JOIN subjects s ON s.id = t.subject_id
		 WHERE t.id = ? AND t.subject_id = ? AND s.user_id = ?`,
		topicID,
		subjectID,
		userID,
	)

	var topic model.Topic
	var createdAt, updatedAt string
	if err := row.Scan(
		&topic.ID,
		&topic.SubjectID,
		&topic.Name,
		&topic.TotalTime,
		&topic.QuestionsAnswered,
		&topic.QuestionsCorrect,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}

	var err error
	if topic.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse topic created_at: %w", err)
	}
	if topic.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse topic updated_at: %w", err)
	}
	return &topic, nil
}

// InsertRecordTx appends a study record and bumps the topic's
// cumulative counters in the same transaction.
func (r *SubjectRepository) InsertRecordTx(ctx context.Context, tx *sql.Tx, record *model.StudyRecord) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO study_records (
			id, topic_id, date, time_spent, questions_answered, questions_correct, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.TopicID,
		record.Date.UTC().Format(time.RFC3339Nano),
		record.TimeSpent,
		record.QuestionsAnswered,
		record.QuestionsCorrect,
		record.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert study record: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE topics
		 SET total_time = total_time + ?,
		     questions_answered = questions_answered + ?,
		     questions_correct = questions_correct + ?,
		     updated_at = ?
		 WHERE id = ?`,
		record.TimeSpent,
		record.QuestionsAnswered,
		record.QuestionsCorrect,
		time.Now().UTC().Format(time.RFC3339Nano),
		record.TopicID,
	)
	if err != nil {
		return fmt.Errorf("update topic counters: %w", err)
	}
	return nil
}

// ListByUser loads the user's subjects with topics and, optionally,
// each topic's records (newest first).
func (r *SubjectRepository) ListByUser(ctx context.Context, userID string, withRecords bool) ([]model.Subject, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, name, importance, created_at, updated_at
		 FROM subjects
		 WHERE user_id = ?
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]model.Subject, 0)
	for rows.Next() {
		var subject model.Subject
		var createdAt, updatedAt string
		if err := rows.Scan(
			&subject.ID,
			&subject.UserID,
			&subject.Name,
			&subject.Importance,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		if subject.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse subject created_at: %w", err)
		}
		if subject.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse subject updated_at: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}

	for i := range subjects {
		topics, err := r.listTopics(ctx, subjects[i].ID, withRecords)
		if err != nil {
			return nil, err
		}
		subjects[i].Topics = topics
	}
	return subjects, nil
}

func (r *SubjectRepository) listTopics(ctx context.Context, subjectID string, withRecords bool) ([]model.Topic, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, subject_id, name, total_time, questions_answered, questions_correct,
		        created_at, updated_at
		 FROM topics
		 WHERE subject_id = ?
		 ORDER BY created_at ASC`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	topics := make([]model.Topic, 0)
	for rows.Next() {
		var topic model.Topic
		var createdAt, updatedAt string
		if err := rows.Scan(
			&topic.ID,
			&topic.SubjectID,
			&topic.Name,
			&topic.TotalTime,
			&topic.QuestionsAnswered,
			&topic.QuestionsCorrect,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		if topic.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse topic created_at: %w", err)
		}
		if topic.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse topic updated_at: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	if withRecords {
		for i := range topics {
			records, err := r.listRecords(ctx, topics[i].ID)
			if err != nil {
				return nil, err
			}
			topics[i].Records = records
		}
	}
	return topics, nil
}

func (r *SubjectRepository) listRecords(ctx context.Context, topicID string) ([]model.StudyRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, topic_id, date, time_spent, questions_answered, questions_correct, notes
		 FROM study_records
		 WHERE topic_id = ?
		 ORDER BY date DESC`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("list study records: %w", err)
	}
	defer rows.Close()

	records := make([]model.StudyRecord, 0)
	for rows.Next() {
		var record model.StudyRecord
		var date string
		if err := rows.Scan(
			&record.ID,
			&record.TopicID,
			&date,
			&record.TimeSpent,
			&record.QuestionsAnswered,
			&record.QuestionsCorrect,
			&record.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan study record: %w", err)
		}
		if record.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("parse record date: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study records: %w", err)
	}
	return records, nil
}
