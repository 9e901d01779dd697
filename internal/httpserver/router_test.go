package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitflow/internal/analytics"
	"habitflow/internal/handler"
	"habitflow/internal/model"
	"habitflow/internal/service"
	"habitflow/internal/store"
	"habitflow/pkg/outbox"
	"habitflow/pkg/rbac"
	"habitflow/pkg/trace"
	"habitflow/pkg/util"
)

const secret = "test-secret"

type fakeHabits struct {
	lastUser  string
	lastInput service.LogInput
	logErr    error
}

func (f *fakeHabits) ListHabits(_ context.Context, userID string) ([]model.Habit, error) {
	f.lastUser = userID
	return []model.Habit{{ID: "h1", UserID: userID, Title: "Read"}}, nil
}

func (f *fakeHabits) CreateHabit(_ context.Context, userID string, in service.HabitInput) (*model.Habit, error) {
	h := &model.Habit{ID: "h2", UserID: userID, Title: in.Title, TriggerCue: in.TriggerCue, TimeOfDay: in.TimeOfDay, Frequency: in.Frequency, Category: in.Category}
	h.ApplyDefaults()
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (f *fakeHabits) ArchiveHabit(_ context.Context, _, habitID string) error {
	if habitID != "h1" {
		return fmt.Errorf("%w: %s", model.ErrHabitNotFound, habitID)
	}
	return nil
}

func (f *fakeHabits) LogHabit(_ context.Context, _, habitID string, in service.LogInput) (*model.HabitLog, error) {
	f.lastInput = in
	if f.logErr != nil {
		return nil, f.logErr
	}
	return &model.HabitLog{ID: "l1", HabitID: habitID, Status: in.Status, Notes: in.Notes}, nil
}

func (f *fakeHabits) LogFriction(_ context.Context, _, habitID, reason string) (*model.HabitLog, error) {
	if reason == "" {
		reason = model.DefaultFrictionReason
	}
	return &model.HabitLog{ID: "l2", HabitID: habitID, Status: model.StatusSkipped, Notes: &reason}, nil
}

func (f *fakeHabits) UpdateNotes(_ context.Context, _, logID string, notes *string) (*model.HabitLog, error) {
	return &model.HabitLog{ID: logID, Notes: notes}, nil
}

type fakeInsights struct {
	lastLoc   *time.Location
	lastRange service.ReportRange
}

func (f *fakeInsights) Focus(_ context.Context, _ string, loc *time.Location) (analytics.FocusView, error) {
	f.lastLoc = loc
	return analytics.FocusView{Greeting: "Good Morning", TimeBlock: model.Morning, BlockWon: true}, nil
}

func (f *fakeInsights) Report(_ context.Context, _ string, _ *time.Location, r service.ReportRange) (analytics.Report, error) {
	f.lastRange = r
	return analytics.Report{Heatmap: []analytics.HeatmapDay{
		{Count: 0, Total: 2, Intensity: 0},
		{Count: 1, Total: 2, Intensity: 0.5},
		{Count: 2, Total: 2, Intensity: 1},
	}}, nil
}

func (f *fakeInsights) Streak(_ context.Context, _, habitID string, _ *time.Location) (int, error) {
	if habitID != "h1" {
		return 0, model.ErrHabitNotFound
	}
	return 4, nil
}

type fakeOutbox struct{ replayed []int64 }

func (f *fakeOutbox) FailedEvents(context.Context, int) ([]*outbox.Event, error) {
	return []*outbox.Event{{ID: 7, RoutingKey: "habit.created", Status: outbox.StatusFailed}}, nil
}

func (f *fakeOutbox) ReplayEvent(_ context.Context, id int64) error {
	if id != 7 {
		return fmt.Errorf("failed to get event: %w", outbox.ErrEventNotFound)
	}
	f.replayed = append(f.replayed, id)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	router   *Router
	habits   *fakeHabits
	insights *fakeInsights
	outbox   *fakeOutbox
}

func newTestServer(pingErr error) *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{habits: &fakeHabits{}, insights: &fakeInsights{}, outbox: &fakeOutbox{}}
	s.router = NewRouter(
		handler.NewHabitHandler(s.habits, zap.NewNop()),
		handler.NewInsightHandler(s.insights, zap.NewNop()),
		handler.NewAdminHandler(s.outbox, zap.NewNop()),
		secret,
		fakePinger{err: pingErr},
		zap.NewNop(),
	)
	return s
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName()))

	w = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = newTestServer(errors.New("down")).do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	s := newTestServer(nil)
	w := s.do(t, http.MethodGet, "/healthz", "", nil, trace.HeaderName(), "trace-abc")
	assert.Equal(t, "trace-abc", w.Header().Get(trace.HeaderName()))
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(t, http.MethodGet, "/habits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/habits", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/habits", token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", s.habits.lastUser)
}

func TestCreateHabit(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", rbac.RoleUser)

	w := s.do(t, http.MethodPost, "/habits", tok, map[string]any{
		"title":       "Stretch",
		"trigger_cue": "After standup",
		"time_of_day": "afternoon",
		"frequency":   []string{"Mon", "Wed"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "afternoon", body["time_of_day"])
	assert.Equal(t, "health", body["category"])

	w = s.do(t, http.MethodPost, "/habits", tok, map[string]any{"title": "x", "trigger_cue": "y", "time_of_day": "noon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/habits", tok, map[string]any{"trigger_cue": "y"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrMissingTitle.Error(), decode(t, w)["error"])
}

func TestArchiveHabit(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodPost, "/habits/h1/archive", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/habits/nope/archive", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogHabit(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodPost, "/habits/h1/logs", tok,
		map[string]any{"status": "completed", "completed_at": "2026-10-12T08:00:00Z"},
		"Idempotency-Key", "key-1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "key-1", s.habits.lastInput.IdempotencyKey)
	require.NotNil(t, s.habits.lastInput.CompletedAt)
	assert.Equal(t, 8, s.habits.lastInput.CompletedAt.Hour())

	w = s.do(t, http.MethodPost, "/habits/h1/logs", tok, map[string]any{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.habits.logErr = service.ErrDuplicateSubmission
	w = s.do(t, http.MethodPost, "/habits/h1/logs", tok, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	s.habits.logErr = errors.New("db exploded")
	w = s.do(t, http.MethodPost, "/habits/h1/logs", tok, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode(t, w)["error"])
}

func TestFrictionAndNotes(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodPost, "/habits/h1/friction", tok, map[string]any{"reason": ""})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "skipped", body["status"])
	assert.Equal(t, model.DefaultFrictionReason, body["notes"])

	w = s.do(t, http.MethodPatch, "/logs/l1/notes", tok, map[string]any{"notes": "felt great"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "felt great", decode(t, w)["notes"])
}

func TestFocus(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodGet, "/focus?tz=Asia/Tokyo", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Good Morning", decode(t, w)["greeting"])
	require.NotNil(t, s.insights.lastLoc)
	assert.Equal(t, "Asia/Tokyo", s.insights.lastLoc.String())

	w = s.do(t, http.MethodGet, "/focus?tz=Mars/Olympus", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalytics(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodGet, "/analytics?from=2026-01-01&to=2026-03-31", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, s.insights.lastRange.From)
	assert.Equal(t, "2026-01-01", s.insights.lastRange.From.String())
	assert.Equal(t, "2026-03-31", s.insights.lastRange.To.String())

	var resp handler.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Heatmap, 3)
	assert.Equal(t, []int{0, 3, 4}, []int{resp.Heatmap[0].Tier, resp.Heatmap[1].Tier, resp.Heatmap[2].Tier})
	assert.NotNil(t, resp.Habits)

	w = s.do(t, http.MethodGet, "/analytics?from=yesterday", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type emptySnapshots struct{}

func (emptySnapshots) Snapshot(context.Context, string) (store.Snapshot, error) {
	return store.Snapshot{}, nil
}

func TestAnalytics_RejectsOversizedRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	insights := service.NewInsightService(emptySnapshots{}, analytics.New(), 30, zap.NewNop())
	s := &testServer{router: NewRouter(
		handler.NewHabitHandler(&fakeHabits{}, zap.NewNop()),
		handler.NewInsightHandler(insights, zap.NewNop()),
		handler.NewAdminHandler(&fakeOutbox{}, zap.NewNop()),
		secret,
		fakePinger{},
		zap.NewNop(),
	)}
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodGet, "/analytics?from=0001-01-01&to=9999-12-31", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "date range too large")

	w = s.do(t, http.MethodGet, "/analytics?from=2026-01-01&to=2026-01-31", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/analytics?from=2026-01-01&to=2026-01-30", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp handler.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Heatmap, 30)
}

func TestStreak(t *testing.T) {
	s := newTestServer(nil)
	tok := token(t, "u1", "")

	w := s.do(t, http.MethodGet, "/habits/h1/streak", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["streak"])

	w = s.do(t, http.MethodGet, "/habits/h9/streak", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRequiresRole(t *testing.T) {
	s := newTestServer(nil)

	w := s.do(t, http.MethodGet, "/admin/outbox/failed", token(t, "u1", rbac.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := token(t, "ops", rbac.RoleAdmin)
	w = s.do(t, http.MethodGet, "/admin/outbox/failed", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = s.do(t, http.MethodPost, "/admin/outbox/7/replay", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{7}, s.outbox.replayed)

	w = s.do(t, http.MethodPost, "/admin/outbox/8/replay", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/admin/outbox/abc/replay", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
