package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"studyhighway/backend/internal/db"
	"studyhighway/backend/internal/handler"
	"studyhighway/backend/internal/repository"
	"studyhighway/backend/internal/router"
	"studyhighway/backend/internal/service"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type sessionEnvelope struct {
	Session struct {
		DailyGoals []struct {
			ID             string  `json:"id"`
			Subject        string  `json:"subject"`
			TargetMinutes  float64 `json:"targetMinutes"`
			CurrentMinutes float64 `json:"currentMinutes"`
			Status         string  `json:"status"`
			IsRunning      bool    `json:"isRunning"`
		} `json:"dailyGoals"`
		FreeTimers []struct {
			ID        string `json:"id"`
			Subject   string `json:"subject"`
			IsRunning bool   `json:"isRunning"`
		} `json:"freeTimers"`
		ActiveTimerID string  `json:"activeTimerId"`
		DailyProgress float64 `json:"dailyProgress"`
	} `json:"session"`
}

type goalListEnvelope struct {
	Goals []struct {
		ID             string  `json:"id"`
		WeeklyHours    float64 `json:"weeklyHours"`
		CompletedHours float64 `json:"completedHours"`
		WeeklyProgress float64 `json:"weeklyProgress"`
	} `json:"goals"`
}

type importEnvelope struct {
	Subjects []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Topics []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"topics"`
	} `json:"subjects"`
	Skipped []string `json:"skipped"`
}

type simuladoEnvelope struct {
	Simulado struct {
		ID             string  `json:"id"`
		TotalQuestions int     `json:"totalQuestions"`
		TotalCorrect   int     `json:"totalCorrect"`
		TotalTime      float64 `json:"totalTime"`
		Accuracy       float64 `json:"accuracy"`
	} `json:"simulado"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestGoalSessionFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env.engine, "user1@example.com", "123456")

	// 7h/week uniform on one subject derives a 60-minute instance today.
	status, _ := requestJSON(t, env.engine, http.MethodPost, "/api/goals", user.Token, map[string]interface{}{
		"subjects":         []string{"Math"},
		"weeklyHours":      7,
		"distributionType": "uniform",
	})
	if status != http.StatusCreated {
		t.Fatalf("create goal: status %d", status)
	}

	// A second goal splits today's 2 hours across two subjects.
	status, _ = requestJSON(t, env.engine, http.MethodPost, "/api/goals", user.Token, map[string]interface{}{
		"subjects":         []string{"Law", "Portuguese"},
		"weeklyHours":      14,
		"distributionType": "uniform",
	})
	if status != http.StatusCreated {
		t.Fatalf("create second goal: status %d", status)
	}

	session := getSession(t, env.engine, user.Token)
	if len(session.Session.DailyGoals) != 3 {
		t.Fatalf("daily goals = %d, want 3", len(session.Session.DailyGoals))
	}
	for _, goal := range session.Session.DailyGoals {
		if goal.Status != "not-started" || goal.IsRunning || goal.CurrentMinutes != 0 {
			t.Fatalf("fresh instance not pristine: %+v", goal)
		}
		if goal.TargetMinutes != 60 {
			t.Fatalf("target = %f, want 60 for %s", goal.TargetMinutes, goal.Subject)
		}
	}
	mathID := session.Session.DailyGoals[0].ID
	lawID := session.Session.DailyGoals[1].ID

	// Start math, accumulate, then start law: math is demoted to paused
	// and keeps its elapsed time.
	status, _ = requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+mathID+"/start", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("start math: status %d", status)
	}
	env.sessions.TickAll(ctx, 30)

	status, body := requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+lawID+"/start", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("start law: status %d: %s", status, string(body))
	}
	var afterSwitch sessionEnvelope
	if err := json.Unmarshal(body, &afterSwitch); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if afterSwitch.Session.ActiveTimerID != lawID {
		t.Fatalf("active = %s, want %s", afterSwitch.Session.ActiveTimerID, lawID)
	}
	running := 0
	for _, goal := range afterSwitch.Session.DailyGoals {
		if goal.IsRunning {
			running++
		}
		if goal.ID == mathID {
			if goal.Status != "paused" {
				t.Fatalf("math status = %s, want paused", goal.Status)
			}
			if goal.CurrentMinutes != 0.5 {
				t.Fatalf("math elapsed = %f, want 0.5", goal.CurrentMinutes)
			}
		}
	}
	if running != 1 {
		t.Fatalf("%d timers running, want 1", running)
	}

	// Pausing law flushes its elapsed 6 minutes into the weekly goal.
	env.sessions.TickAll(ctx, 360)
	status, _ = requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+lawID+"/pause", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("pause law: status %d", status)
	}

	status, goalsBody := requestJSON(t, env.engine, http.MethodGet, "/api/goals", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list goals: status %d", status)
	}
	var goals goalListEnvelope
	if err := json.Unmarshal(goalsBody, &goals); err != nil {
		t.Fatalf("unmarshal goals: %v", err)
	}
	flushed := 0.0
	for _, goal := range goals.Goals {
		flushed += goal.CompletedHours
	}
	if flushed != 0.1 {
		t.Fatalf("completed hours = %f, want 0.1", flushed)
	}

	// Unknown timer ids yield a 404, not a crash or silent success.
	status, body = requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/ghost/start", user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("start ghost: status %d", status)
	}
	var notFound apiErrorEnvelope
	if err := json.Unmarshal(body, &notFound); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if notFound.Error.Code != "timer_not_found" {
		t.Fatalf("error code = %s", notFound.Error.Code)
	}
}

func TestGoalCompletionViaTicks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env.engine, "finisher@example.com", "123456")

	// 7h/week uniform across two subjects: 30 minutes each today.
	status, _ := requestJSON(t, env.engine, http.MethodPost, "/api/goals", user.Token, map[string]interface{}{
		"subjects":         []string{"Math", "Law"},
		"weeklyHours":      7,
		"distributionType": "uniform",
	})
	if status != http.StatusCreated {
		t.Fatalf("create goal: status %d", status)
	}

	session := getSession(t, env.engine, user.Token)
	goalID := session.Session.DailyGoals[0].ID

	status, _ = requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+goalID+"/start", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("start: status %d", status)
	}

	// Tick past the 30-minute target.
	env.sessions.TickAll(ctx, 1900)

	session = getSession(t, env.engine, user.Token)
	done := session.Session.DailyGoals[0]
	if done.Status != "completed" || done.IsRunning {
		t.Fatalf("instance not completed: %+v", done)
	}
	if done.CurrentMinutes != done.TargetMinutes {
		t.Fatalf("elapsed = %f, want clamped to %f", done.CurrentMinutes, done.TargetMinutes)
	}
	if session.Session.ActiveTimerID != "" {
		t.Fatalf("active slot not cleared: %s", session.Session.ActiveTimerID)
	}
	if session.Session.DailyProgress != 50 {
		t.Fatalf("daily progress = %f, want 50", session.Session.DailyProgress)
	}

	// Restarting a completed instance is rejected with a conflict.
	status, body := requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+goalID+"/start", user.Token, nil)
	if status != http.StatusConflict {
		t.Fatalf("restart completed: status %d", status)
	}
	var conflict apiErrorEnvelope
	if err := json.Unmarshal(body, &conflict); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if conflict.Error.Code != "invalid_transition" {
		t.Fatalf("error code = %s", conflict.Error.Code)
	}

	// Completion credited the full 30-minute target to the weekly goal.
	status, goalsBody := requestJSON(t, env.engine, http.MethodGet, "/api/goals", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list goals: status %d", status)
	}
	var goals goalListEnvelope
	if err := json.Unmarshal(goalsBody, &goals); err != nil {
		t.Fatalf("unmarshal goals: %v", err)
	}
	if goals.Goals[0].CompletedHours != 0.5 {
		t.Fatalf("completed hours = %f, want 0.5", goals.Goals[0].CompletedHours)
	}
}

func TestFreeTimerLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := registerUser(t, env.engine, "free@example.com", "123456")

	status, body := requestJSON(t, env.engine, http.MethodPost, "/api/session/free-timers", user.Token, map[string]string{
		"subject": "Flashcards",
	})
	if status != http.StatusCreated {
		t.Fatalf("create free timer: status %d: %s", status, string(body))
	}
	var created sessionEnvelope
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if len(created.Session.FreeTimers) != 1 {
		t.Fatalf("free timers = %d, want 1", len(created.Session.FreeTimers))
	}
	timerID := created.Session.FreeTimers[0].ID

	status, _ = requestJSON(t, env.engine, http.MethodPost, "/api/session/timers/"+timerID+"/start", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("start free timer: status %d", status)
	}
	env.sessions.TickAll(ctx, 90)

	session := getSession(t, env.engine, user.Token)
	if session.Session.ActiveTimerID != timerID {
		t.Fatalf("active = %s, want %s", session.Session.ActiveTimerID, timerID)
	}

	status, _ = requestJSON(t, env.engine, http.MethodDelete, "/api/session/free-timers/"+timerID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete free timer: status %d", status)
	}
	session = getSession(t, env.engine, user.Token)
	if len(session.Session.FreeTimers) != 0 {
		t.Fatal("free timer survived deletion")
	}
	if session.Session.ActiveTimerID != "" {
		t.Fatal("active slot survived free timer deletion")
	}
}

func TestSubjectImportAndRecords(t *testing.T) {
	env := setupTestEnv(t)
	user := registerUser(t, env.engine, "subjects@example.com", "123456")

	status, body := requestJSON(t, env.engine, http.MethodPost, "/api/subjects", user.Token, map[string]string{
		"bulk": "Math:matrices,geometry;broken-entry;Law:constitutional",
	})
	if status != http.StatusCreated {
		t.Fatalf("import: status %d: %s", status, string(body))
	}
	var imported importEnvelope
	if err := json.Unmarshal(body, &imported); err != nil {
		t.Fatalf("unmarshal import: %v", err)
	}
	if len(imported.Subjects) != 2 {
		t.Fatalf("subjects = %d, want 2", len(imported.Subjects))
	}
	if len(imported.Skipped) != 1 || imported.Skipped[0] != "broken-entry" {
		t.Fatalf("skipped = %v", imported.Skipped)
	}

	subjectID := imported.Subjects[0].ID
	topicID := imported.Subjects[0].Topics[0].ID

	// A valid record updates the topic's cumulative counters.
	status, body = requestJSON(t, env.engine, http.MethodPost,
		fmt.Sprintf("/api/subjects/%s/topics/%s/records", subjectID, topicID), user.Token,
		map[string]interface{}{"timeSpent": 30, "questionsAnswered": 10, "questionsCorrect": 8},
	)
	if status != http.StatusCreated {
		t.Fatalf("add record: status %d: %s", status, string(body))
	}
	var topicResp struct {
		Topic struct {
			TotalTime         float64 `json:"totalTime"`
			QuestionsAnswered int     `json:"questionsAnswered"`
			Accuracy          float64 `json:"accuracy"`
		} `json:"topic"`
	}
	if err := json.Unmarshal(body, &topicResp); err != nil {
		t.Fatalf("unmarshal topic: %v", err)
	}
	if topicResp.Topic.TotalTime != 30 || topicResp.Topic.Accuracy != 80 {
		t.Fatalf("topic after record = %+v", topicResp.Topic)
	}

	// correct > answered is rejected.
	status, _ = requestJSON(t, env.engine, http.MethodPost,
		fmt.Sprintf("/api/subjects/%s/topics/%s/records", subjectID, topicID), user.Token,
		map[string]interface{}{"timeSpent": 10, "questionsAnswered": 5, "questionsCorrect": 7},
	)
	if status != http.StatusBadRequest {
		t.Fatalf("invalid record: status %d", status)
	}

	// Topic-name search finds the subject; its totals come from topics.
	status, body = requestJSON(t, env.engine, http.MethodGet, "/api/subjects?search=matri", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list subjects: status %d", status)
	}
	var listed struct {
		Subjects []struct {
			Name           string  `json:"name"`
			TotalTime      float64 `json:"totalTime"`
			TotalQuestions int     `json:"totalQuestions"`
			Accuracy       float64 `json:"accuracy"`
		} `json:"subjects"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("unmarshal subjects: %v", err)
	}
	if len(listed.Subjects) != 1 || listed.Subjects[0].Name != "Math" {
		t.Fatalf("search results = %+v", listed.Subjects)
	}
	if listed.Subjects[0].TotalTime != 30 || listed.Subjects[0].TotalQuestions != 10 {
		t.Fatalf("subject totals = %+v", listed.Subjects[0])
	}

	status, body = requestJSON(t, env.engine, http.MethodGet, "/api/performance", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("performance: status %d", status)
	}
	var performance struct {
		Performance struct {
			TotalTime        float64 `json:"totalTime"`
			Accuracy         float64 `json:"accuracy"`
			TimeDistribution []struct {
				Percentage float64 `json:"percentage"`
			} `json:"timeDistribution"`
		} `json:"performance"`
	}
	if err := json.Unmarshal(body, &performance); err != nil {
		t.Fatalf("unmarshal performance: %v", err)
	}
	if performance.Performance.TotalTime != 30 || performance.Performance.Accuracy != 80 {
		t.Fatalf("performance = %+v", performance.Performance)
	}
}

func TestSimuladoLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	user := registerUser(t, env.engine, "exams@example.com", "123456")

	status, body := requestJSON(t, env.engine, http.MethodPost, "/api/simulados", user.Token, map[string]string{
		"name":    "Practice Exam 1",
		"date":    "2024-01-15",
		"results": "Math:25,22,45;Portuguese:20,15,60",
	})
	if status != http.StatusCreated {
		t.Fatalf("create simulado: status %d: %s", status, string(body))
	}
	var created simuladoEnvelope
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal simulado: %v", err)
	}
	if created.Simulado.TotalQuestions != 45 || created.Simulado.TotalCorrect != 37 || created.Simulado.TotalTime != 105 {
		t.Fatalf("totals = %+v", created.Simulado)
	}
	if created.Simulado.Accuracy < 82.2 || created.Simulado.Accuracy > 82.3 {
		t.Fatalf("accuracy = %f, want about 82.2", created.Simulado.Accuracy)
	}

	// Editing replaces the result list wholesale; totals follow.
	status, body = requestJSON(t, env.engine, http.MethodPut, "/api/simulados/"+created.Simulado.ID, user.Token, map[string]string{
		"name":    "Practice Exam 1 (revised)",
		"results": "Math:10,10,20",
	})
	if status != http.StatusOK {
		t.Fatalf("update simulado: status %d: %s", status, string(body))
	}
	var updated simuladoEnvelope
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal updated simulado: %v", err)
	}
	if updated.Simulado.TotalQuestions != 10 || updated.Simulado.Accuracy != 100 {
		t.Fatalf("updated totals = %+v", updated.Simulado)
	}

	status, _ = requestJSON(t, env.engine, http.MethodDelete, "/api/simulados/"+created.Simulado.ID, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete simulado: status %d", status)
	}
	status, body = requestJSON(t, env.engine, http.MethodGet, "/api/simulados", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list simulados: status %d", status)
	}
	var remaining struct {
		Simulados []json.RawMessage `json:"simulados"`
	}
	if err := json.Unmarshal(body, &remaining); err != nil {
		t.Fatalf("unmarshal simulados: %v", err)
	}
	if len(remaining.Simulados) != 0 {
		t.Fatalf("simulados = %d after delete", len(remaining.Simulados))
	}
}

func TestUserIsolation(t *testing.T) {
	env := setupTestEnv(t)
	user1 := registerUser(t, env.engine, "a@example.com", "123456")
	user2 := registerUser(t, env.engine, "b@example.com", "123456")

	status, _ := requestJSON(t, env.engine, http.MethodPost, "/api/goals", user1.Token, map[string]interface{}{
		"subjects":         []string{"Math"},
		"weeklyHours":      7,
		"distributionType": "uniform",
	})
	if status != http.StatusCreated {
		t.Fatalf("create goal: status %d", status)
	}

	session := getSession(t, env.engine, user2.Token)
	if len(session.Session.DailyGoals) != 0 {
		t.Fatalf("user2 sees %d goal instances from user1", len(session.Session.DailyGoals))
	}

	status, _ = requestJSON(t, env.engine, http.MethodGet, "/api/session", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous session: status %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	env.engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

type testEnv struct {
	engine   http.Handler
	sessions *service.SessionService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	subjectRepo := repository.NewSubjectRepository(database)
	simuladoRepo := repository.NewSimuladoRepository(database)

	authService := service.NewAuthService(userRepo, "test-secret", 24*time.Hour)
	sessionService := service.NewSessionService(goalRepo)
	goalService := service.NewGoalService(goalRepo, sessionService)
	subjectService := service.NewSubjectService(subjectRepo)
	simuladoService := service.NewSimuladoService(simuladoRepo)

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	goalHandler := handler.NewGoalHandler(goalService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	simuladoHandler := handler.NewSimuladoHandler(simuladoService)

	engine := router.New(
		authService,
		authHandler,
		sessionHandler,
		goalHandler,
		subjectHandler,
		simuladoHandler,
		[]string{"http://localhost:5173"},
	)
	return &testEnv{engine: engine, sessions: sessionService}
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func getSession(t *testing.T, server http.Handler, token string) sessionEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodGet, "/api/session", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get session failed with status %d: %s", status, string(body))
	}
	var resp sessionEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal session response: %v", err)
	}
	return resp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
