// Package metrics contains the derived-statistic calculations: accuracy,
// progress percentages, time distribution, and duration formatting.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"studyhighway/backend/internal/model"
	"studyhighway/backend/internal/session"
)

var (
	ErrNegativeRecord         = errors.New("record fields must be non-negative")
	ErrCorrectExceedsAnswered = errors.New("correct answers exceed answered questions")
)

// Accuracy returns correct/answered as a percentage, 0 when nothing was
// answered.
func Accuracy(correct, answered int) float64 {
	if answered <= 0 {
		return 0
	}
	return float64(correct) / float64(answered) * 100
}

// AppendStudyRecord validates the record, appends it to the topic, and
// updates the topic's cumulative counters additively. The topic is
// untouched when validation fails.
func AppendStudyRecord(topic *model.Topic, record model.StudyRecord) error {
	if record.QuestionsCorrect < 0 || record.QuestionsAnswered < 0 || record.TimeSpent < 0 {
		return ErrNegativeRecord
	}
	if record.QuestionsCorrect > record.QuestionsAnswered {
		return ErrCorrectExceedsAnswered
	}

	topic.Records = append(topic.Records, record)
	topic.TotalTime += record.TimeSpent
	topic.QuestionsAnswered += record.QuestionsAnswered
	topic.QuestionsCorrect += record.QuestionsCorrect
	topic.Accuracy = Accuracy(topic.QuestionsCorrect, topic.QuestionsAnswered)
	return nil
}

// Totals aggregates a mock exam's per-subject results.
type Totals struct {
	TotalQuestions int     `json:"totalQuestions"`
	TotalCorrect   int     `json:"totalCorrect"`
	TotalTime      float64 `json:"totalTime"`
	Accuracy       float64 `json:"accuracy"`
}

// SimuladoTotals sums the per-subject results of a mock exam. It is
// always recomputed from the full result list, never patched
// incrementally.
func SimuladoTotals(results []model.SimuladoResult) Totals {
	var t Totals
	for _, r := range results {
		t.TotalQuestions += r.QuestionsTotal
		t.TotalCorrect += r.QuestionsCorrect
		t.TotalTime += r.TimeSpent
	}
	t.Accuracy = Accuracy(t.TotalCorrect, t.TotalQuestions)
	return t
}

// SubjectTotals recomputes a subject's cumulative fields from its child
// topics. The stored subject row never carries totals; this is the
// single source of truth.
func SubjectTotals(subject *model.Subject) {
	subject.TotalTime = 0
	subject.TotalQuestions = 0
	subject.TotalCorrect = 0
	for _, topic := range subject.Topics {
		subject.TotalTime += topic.TotalTime
		subject.TotalQuestions += topic.QuestionsAnswered
		subject.TotalCorrect += topic.QuestionsCorrect
	}
	subject.Accuracy = Accuracy(subject.TotalCorrect, subject.TotalQuestions)
}

// DailyProgress is the share of today's goal instances already
// completed. Unclamped: instances cap individually, so the ratio never
// exceeds 100 in practice.
func DailyProgress(instances []session.DailyGoal) float64 {
	if len(instances) == 0 {
		return 0
	}
	completed := 0
	for _, g := range instances {
		if g.Status == session.StatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(instances)) * 100
}

// WeeklyProgress is completed hours over the weekly target, clamped to
// 100 because contributed time can outrun the target.
func WeeklyProgress(goal model.WeeklyGoal) float64 {
	if goal.WeeklyHours <= 0 {
		return 0
	}
	pct := goal.CompletedHours / goal.WeeklyHours * 100
	return math.Min(pct, 100)
}

// TimeShare is one topic's slice of the total study time.
type TimeShare struct {
	TopicID    string  `json:"topicId"`
	Name       string  `json:"name"`
	Minutes    float64 `json:"minutes"`
	Percentage float64 `json:"percentage"`
}

// TimeDistribution computes each topic's percentage of the total study
// time. Shares sum to 100 (within float tolerance) when any time was
// logged, and are all zero otherwise.
func TimeDistribution(topics []model.Topic) []TimeShare {
	var total float64
	for _, t := range topics {
		total += t.TotalTime
	}

	shares := make([]TimeShare, 0, len(topics))
	for _, t := range topics {
		share := TimeShare{TopicID: t.ID, Name: t.Name, Minutes: t.TotalTime}
		if total > 0 {
			share.Percentage = t.TotalTime / total * 100
		}
		shares = append(shares, share)
	}
	return shares
}

// FormatMinutes renders fractional minutes as "Xh Ym" above an hour and
// "Ym Zs" below. Each unit is floored, not rounded.
func FormatMinutes(minutes float64) string {
	hours := int(minutes / 60)
	mins := int(minutes) % 60
	secs := int(math.Mod(minutes, 1) * 60)

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
