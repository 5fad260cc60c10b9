package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "studyhighway/backend/internal/errors"
	"studyhighway/backend/internal/metrics"
	"studyhighway/backend/internal/repository"
	"studyhighway/backend/internal/session"
)

// SessionService owns each user's study session aggregate: the daily
// goal instances derived from their weekly goals plus their free
// timers. The aggregate is in-memory and serialized behind a single
// lock; only the weekly goals' completed hours survive a restart.
type SessionService struct {
	goalRepo *repository.GoalRepository

	mu       sync.Mutex
	sessions map[string]*userSession
	now      func() time.Time
}

type userSession struct {
	registry   *session.Registry
	derivedDay string
	stale      bool
}

// SessionView is the read-only projection handed to the transport.
type SessionView struct {
	Date          string              `json:"date"`
	DailyGoals    []session.DailyGoal `json:"dailyGoals"`
	FreeTimers    []session.FreeTimer `json:"freeTimers"`
	ActiveTimerID string              `json:"activeTimerId,omitempty"`
	DailyProgress float64             `json:"dailyProgress"`
}

func NewSessionService(goalRepo *repository.GoalRepository) *SessionService {
	return &SessionService{
		goalRepo: goalRepo,
		sessions: make(map[string]*userSession),
		now:      time.Now,
	}
}

// State returns the user's session for today, deriving a fresh cycle of
// goal instances when the day rolled over or the weekly goals changed.
func (s *SessionService) State(ctx context.Context, userID string) (*SessionView, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, apiErr := s.currentSession(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}
	view := s.view(sess)
	return &view, nil
}

// Start makes the named timer the single running one.
func (s *SessionService) Start(ctx context.Context, userID, timerID string) (*SessionView, *apperrors.APIError) {
	return s.control(ctx, userID, timerID, func(r *session.Registry) error {
		return r.Start(timerID)
	})
}

// Pause halts the timer, flushing its elapsed time into the weekly
// goal's completed hours first.
func (s *SessionService) Pause(ctx context.Context, userID, timerID string) (*SessionView, *apperrors.APIError) {
	return s.control(ctx, userID, timerID, func(r *session.Registry) error {
		s.flushContribution(ctx, r, timerID)
		return r.Pause(timerID)
	})
}

// Stop resets the timer. Elapsed time is flushed before the reset so
// interrupted work still counts toward the weekly goal.
func (s *SessionService) Stop(ctx context.Context, userID, timerID string) (*SessionView, *apperrors.APIError) {
	return s.control(ctx, userID, timerID, func(r *session.Registry) error {
		s.flushContribution(ctx, r, timerID)
		return r.Stop(timerID)
	})
}

// CreateFreeTimer adds a named stopwatch to the user's session.
func (s *SessionService) CreateFreeTimer(ctx context.Context, userID, subject string) (*SessionView, *apperrors.APIError) {
	if subject == "" {
		return nil, apperrors.BadRequest("invalid_subject", "timer name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, apiErr := s.currentSession(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	sess.registry.AddFreeTimer(session.FreeTimer{
		ID:      uuid.NewString(),
		Subject: subject,
	})
	view := s.view(sess)
	return &view, nil
}

// DeleteFreeTimer discards the stopwatch and whatever time it held.
func (s *SessionService) DeleteFreeTimer(ctx context.Context, userID, timerID string) (*SessionView, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, apiErr := s.currentSession(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := sess.registry.RemoveFreeTimer(timerID); err != nil {
		return nil, apperrors.NotFound("timer_not_found", "free timer not found")
	}
	view := s.view(sess)
	return &view, nil
}

// Invalidate flags the user's derivation as stale. The next read or
// control call rebuilds today's instances from the stored weekly goals.
// Goal mutations call this; elapsed time on the discarded instances has
// already been flushed or is intentionally lost.
func (s *SessionService) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.stale = true
	}
}

// TickAll advances every user's active timer by deltaSeconds. Called by
// the server's ticker goroutine; the service never owns the scheduling
// primitive itself. Completed instances credit their full target to the
// owning weekly goal.
func (s *SessionService) TickAll(ctx context.Context, deltaSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if completed := sess.registry.Tick(deltaSeconds); completed != nil {
			s.flushContribution(ctx, sess.registry, completed.ID)
		}
	}
}

func (s *SessionService) control(ctx context.Context, userID, timerID string, op func(*session.Registry) error) (*SessionView, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, apiErr := s.currentSession(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}

	switch err := op(sess.registry); err {
	case nil:
	case session.ErrNotFound:
		return nil, apperrors.NotFound("timer_not_found", "timer not found")
	case session.ErrInvalidTransition:
		return nil, apperrors.Conflict("invalid_transition", "timer cannot make that transition", nil)
	default:
		return nil, apperrors.Internal("failed to update timer")
	}

	view := s.view(sess)
	return &view, nil
}

// currentSession returns the user's session, re-deriving the daily goal
// instances when needed. Callers must hold s.mu.
func (s *SessionService) currentSession(ctx context.Context, userID string) (*userSession, *apperrors.APIError) {
	today := s.now().Format("2006-01-02")

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &userSession{registry: session.NewRegistry(), stale: true}
		s.sessions[userID] = sess
	}
	if !sess.stale && sess.derivedDay == today {
		return sess, nil
	}

	goals, err := s.goalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load weekly goals")
	}

	sess.registry.ReplaceGoals(session.DeriveDailyGoals(goals, s.now()))
	sess.derivedDay = today
	sess.stale = false
	return sess, nil
}

// flushContribution credits the timer's un-contributed elapsed minutes
// to its weekly goal. Free timers contribute nothing. Persistence
// failures only lose the credit, never the session state.
func (s *SessionService) flushContribution(ctx context.Context, r *session.Registry, timerID string) {
	goalID, minutes := r.TakeContribution(timerID)
	if goalID == "" || minutes <= 0 {
		return
	}
	_ = s.goalRepo.AddCompletedHours(ctx, goalID, minutes/60)
}

func (s *SessionService) view(sess *userSession) SessionView {
	goals := sess.registry.Goals()
	return SessionView{
		Date:          sess.derivedDay,
		DailyGoals:    goals,
		FreeTimers:    sess.registry.FreeTimers(),
		ActiveTimerID: sess.registry.ActiveID(),
		DailyProgress: metrics.DailyProgress(goals),
	}
}
