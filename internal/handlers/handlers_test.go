package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/config"
	"github.com/yungbote/mentorloop-backend/internal/jobs"
	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/pipeline"
	"github.com/yungbote/mentorloop-backend/internal/pipeline/steps"
	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

type fakeAI struct {
	text    string
	jsonOut map[string]any
	err     error
}

func (f *fakeAI) GenerateText(context.Context, string, string) (string, error) {
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(context.Context, string, string, string, map[string]any) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jsonOut, nil
}

func (f *fakeAI) GenerateTextWithImage(context.Context, string, string, string) (string, error) {
	return f.text, f.err
}

func (f *fakeAI) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, f.err
}

type fakeCache struct {
	lookups int
	stores  int
	answer  string
	hit     bool
}

func (f *fakeCache) Lookup(context.Context, uuid.UUID, string) (string, bool, error) {
	f.lookups++
	return f.answer, f.hit, nil
}

func (f *fakeCache) Store(context.Context, uuid.UUID, string, string) error {
	f.stores++
	return nil
}

type fakeUsers struct {
	user *types.User
}

func (f *fakeUsers) Create(_ context.Context, _ *gorm.DB, u *types.User) (*types.User, error) {
	return u, nil
}

func (f *fakeUsers) GetByID(context.Context, *gorm.DB, uuid.UUID) (*types.User, error) {
	return f.user, nil
}

type fakeJobs struct {
	processCtx context.Context
}

func (f *fakeJobs) Submit(_ context.Context, userID uuid.UUID, prompt string) (*types.PipelineJob, error) {
	return &types.PipelineJob{UserID: userID, Prompt: prompt, Status: types.JobStatusPending}, nil
}

func (f *fakeJobs) Get(context.Context, uuid.UUID) (*types.PipelineJob, error) {
	return nil, nil
}

func (f *fakeJobs) ProcessPending(ctx context.Context, _ int) (int, error) {
	f.processCtx = ctx
	return 0, nil
}

var _ jobs.Service = (*fakeJobs)(nil)
var _ services.SemanticCache = (*fakeCache)(nil)

func postJSON(t *testing.T, userID uuid.UUID, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		c.Set("auth_user_id", userID)
	}
	return c, w
}

func testChatHandler(t *testing.T, ai *fakeAI, cache *fakeCache) *ChatHandler {
	t.Helper()
	log := testLogger(t)
	executor := pipeline.NewExecutor(log, pipeline.NewRouter(log, ai), steps.Deps{
		Log:   log,
		AI:    ai,
		Rules: config.Default(),
	})
	// No grade band: gap checking has nothing to compare against and the
	// test stays focused on the chat surface.
	return NewChatHandler(log, executor, services.NewModerationService(log), cache,
		&fakeUsers{user: &types.User{}})
}

func TestChatPendingReflectionSkipsCache(t *testing.T) {
	// A stale cached answer for the same text must not short-circuit the
	// scoring turn and drop the pending marker.
	ai := &fakeAI{jsonOut: map[string]any{"score": 0.8, "followup": "Nice insight!"}}
	cache := &fakeCache{answer: "stale cached answer", hit: true}
	h := testChatHandler(t, ai, cache)

	c, w := postJSON(t, uuid.New(), "/api/chat", chatRequest{
		Message: "I realized fractions are like pizza slices",
		PendingReflection: &types.ReflectionMarker{
			Dimension:           "Connection",
			Prompt:              "How does this connect to something you know?",
			ActivityDescription: "fractions practice",
		},
	})
	h.Chat(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if cache.lookups != 0 || cache.stores != 0 {
		t.Fatalf("cache must not be consulted while a reflection is pending: lookups=%d stores=%d", cache.lookups, cache.stores)
	}

	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResponseText != "Nice insight!" {
		t.Fatalf("scoring node must answer, got %q", resp.ResponseText)
	}
	if resp.PendingReflection != nil {
		t.Fatalf("scored marker must be cleared")
	}
}

func TestChatPlainMessageUsesCache(t *testing.T) {
	ai := &fakeAI{text: "fresh answer"}
	cache := &fakeCache{answer: "cached answer", hit: true}
	h := testChatHandler(t, ai, cache)

	c, w := postJSON(t, uuid.New(), "/api/chat", chatRequest{Message: "Hello!"})
	h.Chat(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if cache.lookups != 1 {
		t.Fatalf("plain message must consult the cache: lookups=%d", cache.lookups)
	}

	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResponseText != "cached answer" || !resp.Cached {
		t.Fatalf("hit must short-circuit: %+v", resp)
	}
}

func TestProcessPendingSurvivesClientDisconnect(t *testing.T) {
	// Claimed jobs must run to completion even when the triggering request
	// is canceled mid-flight.
	svc := &fakeJobs{}
	log := testLogger(t)
	h := NewJobsHandler(svc, services.NewModerationService(log))

	c, w := postJSON(t, uuid.Nil, "/api/jobs/process", processJobsRequest{BatchSize: 3})
	ctx, cancel := context.WithCancel(context.Background())
	c.Request = c.Request.WithContext(ctx)
	cancel()

	h.ProcessPending(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.processCtx == nil {
		t.Fatalf("service was not invoked")
	}
	if err := svc.processCtx.Err(); err != nil {
		t.Fatalf("processing context must outlive the request: %v", err)
	}
}
