package metrics

import (
	"math"
	"testing"

	"studyhighway/backend/internal/model"
	"studyhighway/backend/internal/session"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		correct  int
		answered int
		want     float64
	}{
		{"zero answered", 0, 0, 0},
		{"all correct", 10, 10, 100},
		{"partial", 8, 10, 80},
		{"none correct", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accuracy(tt.correct, tt.answered)
			if !almostEqual(got, tt.want) {
				t.Fatalf("Accuracy(%d, %d) = %f, want %f", tt.correct, tt.answered, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Fatalf("accuracy out of bounds: %f", got)
			}
		})
	}
}

func TestAppendStudyRecord(t *testing.T) {
	topic := model.Topic{ID: "t1", Name: "Matrices"}

	err := AppendStudyRecord(&topic, model.StudyRecord{
		TimeSpent:         30,
		QuestionsAnswered: 10,
		QuestionsCorrect:  8,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if topic.TotalTime != 30 {
		t.Fatalf("total time = %f, want 30", topic.TotalTime)
	}
	if topic.QuestionsAnswered != 10 || topic.QuestionsCorrect != 8 {
		t.Fatalf("counters = %d/%d", topic.QuestionsCorrect, topic.QuestionsAnswered)
	}
	if !almostEqual(topic.Accuracy, 80) {
		t.Fatalf("accuracy = %f, want 80", topic.Accuracy)
	}
	if len(topic.Records) != 1 {
		t.Fatalf("records = %d", len(topic.Records))
	}

	// Second record accumulates additively.
	if err := AppendStudyRecord(&topic, model.StudyRecord{
		TimeSpent:         15,
		QuestionsAnswered: 10,
		QuestionsCorrect:  2,
	}); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if topic.TotalTime != 45 || topic.QuestionsAnswered != 20 || topic.QuestionsCorrect != 10 {
		t.Fatalf("cumulative fields wrong: %+v", topic)
	}
	if !almostEqual(topic.Accuracy, 50) {
		t.Fatalf("accuracy = %f, want 50", topic.Accuracy)
	}
}

func TestAppendStudyRecordRejectsInvalid(t *testing.T) {
	topic := model.Topic{ID: "t1", TotalTime: 10, QuestionsAnswered: 5, QuestionsCorrect: 4, Accuracy: 80}
	before := topic

	err := AppendStudyRecord(&topic, model.StudyRecord{
		TimeSpent:         30,
		QuestionsAnswered: 10,
		QuestionsCorrect:  12,
	})
	if err != ErrCorrectExceedsAnswered {
		t.Fatalf("err = %v, want ErrCorrectExceedsAnswered", err)
	}
	if topic.TotalTime != before.TotalTime ||
		topic.QuestionsAnswered != before.QuestionsAnswered ||
		topic.QuestionsCorrect != before.QuestionsCorrect ||
		len(topic.Records) != 0 {
		t.Fatalf("rejected record mutated topic: %+v", topic)
	}

	if err := AppendStudyRecord(&topic, model.StudyRecord{TimeSpent: -1}); err != ErrNegativeRecord {
		t.Fatalf("negative record: err = %v", err)
	}
}

func TestSimuladoTotals(t *testing.T) {
	results := []model.SimuladoResult{
		{Subject: "Math", QuestionsTotal: 25, QuestionsCorrect: 22, TimeSpent: 45},
		{Subject: "Portuguese", QuestionsTotal: 20, QuestionsCorrect: 15, TimeSpent: 60},
	}

	totals := SimuladoTotals(results)
	if totals.TotalQuestions != 45 || totals.TotalCorrect != 37 || totals.TotalTime != 105 {
		t.Fatalf("totals = %+v", totals)
	}
	want := 37.0 / 45.0 * 100
	if !almostEqual(totals.Accuracy, want) {
		t.Fatalf("accuracy = %f, want %f", totals.Accuracy, want)
	}

	empty := SimuladoTotals(nil)
	if empty.Accuracy != 0 || empty.TotalQuestions != 0 {
		t.Fatalf("empty totals = %+v", empty)
	}
}

func TestSubjectTotals(t *testing.T) {
	subject := model.Subject{
		// Stale cached values must be overwritten, not trusted.
		TotalTime:      999,
		TotalQuestions: 999,
		Topics: []model.Topic{
			{TotalTime: 120, QuestionsAnswered: 40, QuestionsCorrect: 30},
			{TotalTime: 60, QuestionsAnswered: 10, QuestionsCorrect: 10},
		},
	}

	SubjectTotals(&subject)
	if subject.TotalTime != 180 || subject.TotalQuestions != 50 || subject.TotalCorrect != 40 {
		t.Fatalf("totals = %+v", subject)
	}
	if !almostEqual(subject.Accuracy, 80) {
		t.Fatalf("accuracy = %f, want 80", subject.Accuracy)
	}
}

func TestDailyProgress(t *testing.T) {
	if got := DailyProgress(nil); got != 0 {
		t.Fatalf("empty progress = %f", got)
	}

	instances := []session.DailyGoal{
		{Status: session.StatusCompleted},
		{Status: session.StatusInProgress},
		{Status: session.StatusCompleted},
		{Status: session.StatusNotStarted},
	}
	if got := DailyProgress(instances); !almostEqual(got, 50) {
		t.Fatalf("progress = %f, want 50", got)
	}
}

func TestWeeklyProgressClamps(t *testing.T) {
	goal := model.WeeklyGoal{WeeklyHours: 10, CompletedHours: 7}
	if got := WeeklyProgress(goal); !almostEqual(got, 70) {
		t.Fatalf("progress = %f, want 70", got)
	}

	goal.CompletedHours = 15
	if got := WeeklyProgress(goal); got != 100 {
		t.Fatalf("overshoot progress = %f, want clamped 100", got)
	}

	if got := WeeklyProgress(model.WeeklyGoal{}); got != 0 {
		t.Fatalf("zero-hour goal progress = %f", got)
	}
}

func TestTimeDistributionSumsTo100(t *testing.T) {
	topics := []model.Topic{
		{ID: "a", TotalTime: 45},
		{ID: "b", TotalTime: 30},
		{ID: "c", TotalTime: 25},
	}

	shares := TimeDistribution(topics)
	var sum float64
	for _, share := range shares {
		if share.Percentage < 0 || share.Percentage > 100 {
			t.Fatalf("share out of bounds: %+v", share)
		}
		sum += share.Percentage
	}
	if !almostEqual(sum, 100) {
		t.Fatalf("shares sum to %f, want 100", sum)
	}
}

func TestTimeDistributionAllZero(t *testing.T) {
	shares := TimeDistribution([]model.Topic{{ID: "a"}, {ID: "b"}})
	for _, share := range shares {
		if share.Percentage != 0 {
			t.Fatalf("zero-time share = %+v", share)
		}
	}
}

func TestFormatMinutesTruncates(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0m 0s"},
		{0.5, "0m 30s"},
		{59.99, "59m 59s"},
		{60, "1h 0m"},
		{90.7, "1h 30m"},
		{125, "2h 5m"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Fatalf("FormatMinutes(%f) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
