package model

import "time"

const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// DailyDistribution holds the weekly-goal hours allocated to each weekday.
type DailyDistribution struct {
	Monday    float64 `json:"monday"`
	Tuesday   float64 `json:"tuesday"`
	Wednesday float64 `json:"wednesday"`
	Thursday  float64 `json:"thursday"`
	Friday    float64 `json:"friday"`
	Saturday  float64 `json:"saturday"`
	Sunday    float64 `json:"sunday"`
}

// Hours returns the allocation for the given weekday.
func (d DailyDistribution) Hours(day time.Weekday) float64 {
	switch day {
	case time.Monday:
		return d.Monday
	case time.Tuesday:
		return d.Tuesday
	case time.Wednesday:
		return d.Wednesday
	case time.Thursday:
		return d.Thursday
	case time.Friday:
		return d.Friday
	case time.Saturday:
		return d.Saturday
	default:
		return d.Sunday
	}
}

// UniformDistribution spreads the weekly hours evenly across all seven days.
func UniformDistribution(weeklyHours float64) DailyDistribution {
	perDay := weeklyHours / 7
	return DailyDistribution{
		Monday:    perDay,
		Tuesday:   perDay,
		Wednesday: perDay,
		Thursday:  perDay,
		Friday:    perDay,
		Saturday:  perDay,
		Sunday:    perDay,
	}
}

// WeeklyGoal is a recurring study target for one or more subjects,
// distributed across weekdays. CompletedHours accumulates timer
// contributions; it is never recomputed from instances.
type WeeklyGoal struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	Subjects          []string          `json:"subjects"`
	WeeklyHours       float64           `json:"weeklyHours"`
	DailyDistribution DailyDistribution `json:"dailyDistribution"`
	CompletedHours    float64           `json:"completedHours"`
	IsActive          bool              `json:"isActive"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// StudyRecord is one append-only log entry against a topic.
type StudyRecord struct {
	ID                string    `json:"id"`
	TopicID           string    `json:"topicId"`
	Date              time.Time `json:"date"`
	TimeSpent         float64   `json:"timeSpent"`
	QuestionsAnswered int       `json:"questionsAnswered"`
	QuestionsCorrect  int       `json:"questionsCorrect"`
	Notes             string    `json:"notes,omitempty"`
}

// Topic carries cumulative counters kept in sync with its records:
// every record append adds to TotalTime and the question counters.
type Topic struct {
	ID                string        `json:"id"`
	SubjectID         string        `json:"subjectId"`
	Name              string        `json:"name"`
	TotalTime         float64       `json:"totalTime"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	QuestionsCorrect  int           `json:"questionsCorrect"`
	Accuracy          float64       `json:"accuracy"`
	Records           []StudyRecord `json:"records,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Subject groups topics. Its totals are always recomputed from the
// child topics at read time, never stored.
type Subject struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Importance     string    `json:"importance"`
	Topics         []Topic   `json:"topics"`
	TotalTime      float64   `json:"totalTime"`
	TotalQuestions int       `json:"totalQuestions"`
	TotalCorrect   int       `json:"totalCorrect"`
	Accuracy       float64   `json:"accuracy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SimuladoResult is one per-subject line of a mock exam.
type SimuladoResult struct {
	Subject          string  `json:"subject"`
	QuestionsTotal   int     `json:"questionsTotal"`
	QuestionsCorrect int     `json:"questionsCorrect"`
	TimeSpent        float64 `json:"timeSpent"`
}

// Simulado is a mock exam. Totals are derived from the result list and
// recomputed whenever the list is replaced.
type Simulado struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	Name           string           `json:"name"`
	Date           time.Time        `json:"date"`
	Results        []SimuladoResult `json:"results"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalCorrect   int              `json:"totalCorrect"`
	TotalTime      float64          `json:"totalTime"`
	Accuracy       float64          `json:"accuracy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func ValidImportance(importance string) bool {
	return importance == ImportanceHigh || importance == ImportanceMedium || importance == ImportanceLow
}
