// Package session implements the study session engine: the day's goal
// instances derived from weekly goals, free-form timers, and the registry
// that enforces the single-active-timer rule.
package session

import "errors"

const (
	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
)

var (
	ErrNotFound          = errors.New("timer not found")
	ErrInvalidTransition = errors.New("invalid timer transition")
)

// DailyGoal is one timeable unit expanded from a weekly goal for the
// current day. It lives in memory only and is rebuilt on every
// derivation cycle.
type DailyGoal struct {
	ID             string  `json:"id"`
	WeeklyGoalID   string  `json:"weeklyGoalId"`
	Subject        string  `json:"subject"`
	TargetMinutes  float64 `json:"targetMinutes"`
	CurrentMinutes float64 `json:"currentMinutes"`
	Status         string  `json:"status"`
	IsRunning      bool    `json:"isRunning"`

	// contributedMinutes is the portion of CurrentMinutes already
	// flushed into the weekly goal's completed hours.
	contributedMinutes float64
}

// FreeTimer is an ad hoc stopwatch independent of any weekly goal.
type FreeTimer struct {
	ID             string  `json:"id"`
	Subject        string  `json:"subject"`
	CurrentMinutes float64 `json:"currentMinutes"`
	IsRunning      bool    `json:"isRunning"`
}

// Registry owns every timed entity and the active slot. At most one
// entity is running at any instant; Start enforces this by demoting
// every other timer. The registry assumes serialized access: the
// owning service guards it with a single lock, and nothing inside an
// operation can re-enter another.
type Registry struct {
	goals  []*DailyGoal
	timers []*FreeTimer
	active string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// ActiveID returns the id of the running entity, or "" when idle.
func (r *Registry) ActiveID() string {
	return r.active
}

// Goals returns a snapshot of the daily goal instances.
func (r *Registry) Goals() []DailyGoal {
	out := make([]DailyGoal, 0, len(r.goals))
	for _, g := range r.goals {
		out = append(out, *g)
	}
	return out
}

// FreeTimers returns a snapshot of the free timers.
func (r *Registry) FreeTimers() []FreeTimer {
	out := make([]FreeTimer, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, *t)
	}
	return out
}

// ReplaceGoals discards the previous derivation cycle and installs a
// fresh one. Fresh instances are never running, so the active slot is
// cleared unless it points at a free timer.
func (r *Registry) ReplaceGoals(goals []DailyGoal) {
	r.goals = make([]*DailyGoal, 0, len(goals))
	for i := range goals {
		g := goals[i]
		r.goals = append(r.goals, &g)
	}
	if r.active != "" {
		if _, ok := r.findTimer(r.active); !ok {
			r.active = ""
		}
	}
}

// AddFreeTimer registers a new stopped free timer.
func (r *Registry) AddFreeTimer(timer FreeTimer) {
	timer.CurrentMinutes = 0
	timer.IsRunning = false
	r.timers = append(r.timers, &timer)
}

// RemoveFreeTimer deletes the timer and clears the active slot if it
// pointed at it.
func (r *Registry) RemoveFreeTimer(id string) error {
	for i, t := range r.timers {
		if t.ID == id {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			if r.active == id {
				r.active = ""
			}
			return nil
		}
	}
	return ErrNotFound
}

// Start makes the named entity the single running timer. Every other
// entity gets running=false, and an in-progress goal instance is
// demoted to paused so its elapsed time survives. Starting a completed
// instance is rejected.
func (r *Registry) Start(id string) error {
	goal, gok := r.findGoal(id)
	timer, tok := r.findTimer(id)
	if !gok && !tok {
		return ErrNotFound
	}
	if gok && goal.Status == StatusCompleted {
		return ErrInvalidTransition
	}

	for _, g := range r.goals {
		if g.ID == id {
			continue
		}
		g.IsRunning = false
		if g.Status == StatusInProgress {
			g.Status = StatusPaused
		}
	}
	for _, t := range r.timers {
		if t.ID != id {
			t.IsRunning = false
		}
	}

	if gok {
		goal.Status = StatusInProgress
		goal.IsRunning = true
	} else {
		timer.IsRunning = true
	}
	r.active = id
	return nil
}

// Pause halts the entity without losing elapsed time.
func (r *Registry) Pause(id string) error {
	if goal, ok := r.findGoal(id); ok {
		if goal.Status == StatusCompleted {
			return ErrInvalidTransition
		}
		goal.IsRunning = false
		goal.Status = StatusPaused
		r.clearActive(id)
		return nil
	}
	if timer, ok := r.findTimer(id); ok {
		timer.IsRunning = false
		r.clearActive(id)
		return nil
	}
	return ErrNotFound
}

// Stop halts the entity and resets its elapsed time. Goal instances go
// back to not-started; completed instances stay completed.
func (r *Registry) Stop(id string) error {
	if goal, ok := r.findGoal(id); ok {
		if goal.Status == StatusCompleted {
			return ErrInvalidTransition
		}
		goal.IsRunning = false
		goal.Status = StatusNotStarted
		goal.CurrentMinutes = 0
		goal.contributedMinutes = 0
		r.clearActive(id)
		return nil
	}
	if timer, ok := r.findTimer(id); ok {
		timer.IsRunning = false
		timer.CurrentMinutes = 0
		r.clearActive(id)
		return nil
	}
	return ErrNotFound
}

// Tick advances the active entity by deltaSeconds of wall-clock time.
// A goal instance that reaches its target is clamped, marked completed
// and auto-stopped. Returns the instance completed by this tick, if
// any. No-op when nothing is active.
func (r *Registry) Tick(deltaSeconds float64) *DailyGoal {
	if r.active == "" || deltaSeconds <= 0 {
		return nil
	}

	if goal, ok := r.findGoal(r.active); ok && goal.IsRunning {
		goal.CurrentMinutes += deltaSeconds / 60
		if goal.CurrentMinutes >= goal.TargetMinutes {
			goal.CurrentMinutes = goal.TargetMinutes
			goal.Status = StatusCompleted
			goal.IsRunning = false
			r.active = ""
			done := *goal
			return &done
		}
		goal.Status = StatusInProgress
		return nil
	}

	if timer, ok := r.findTimer(r.active); ok && timer.IsRunning {
		timer.CurrentMinutes += deltaSeconds / 60
	}
	return nil
}

// TakeContribution returns the elapsed minutes on the entity that have
// not yet been credited to its weekly goal, and marks them credited.
// Free timers have no weekly goal and contribute nothing.
func (r *Registry) TakeContribution(id string) (weeklyGoalID string, minutes float64) {
	goal, ok := r.findGoal(id)
	if !ok {
		return "", 0
	}
	minutes = goal.CurrentMinutes - goal.contributedMinutes
	if minutes < 0 {
		minutes = 0
	}
	goal.contributedMinutes = goal.CurrentMinutes
	return goal.WeeklyGoalID, minutes
}

func (r *Registry) findGoal(id string) (*DailyGoal, bool) {
	for _, g := range r.goals {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

func (r *Registry) findTimer(id string) (*FreeTimer, bool) {
	for _, t := range r.timers {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (r *Registry) clearActive(id string) {
	if r.active == id {
		r.active = ""
	}
}
