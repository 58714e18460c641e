package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

// fakeAI scripts the generation capability for router and executor tests.
type fakeAI struct {
	text    string
	jsonOut map[string]any
	err     error
	calls   int
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.jsonOut, nil
}

func (f *fakeAI) GenerateTextWithImage(ctx context.Context, system, user, imageURL string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func TestClassifyDeterministicRules(t *testing.T) {
	cases := []struct {
		prompt string
		want   types.Intent
	}{
		{"I baked sourdough bread today", types.IntentLifeLog},
		{"I built a birdhouse this weekend", types.IntentLifeLog},
		{"i volunteered at the shelter", types.IntentLifeLog},
		{"Who profits from standardized testing?", types.IntentInvestigate},
		{"let's follow the money on textbook pricing", types.IntentInvestigate},
		{"I realized fractions are like pizza slices", types.IntentReflect},
		{"I struggled with long division", types.IntentReflect},
		{"help me brainstorm a science fair project", types.IntentBrainstorm},
		{"any opportunities for young coders?", types.IntentOpportunity},
		{"Hello!", types.IntentChat},
	}
	for _, tc := range cases {
		if got := Classify(tc.prompt); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.prompt, got, tc.want)
		}
	}
}

func TestClassifyLifeLogWinsOverLaterRules(t *testing.T) {
	// Contains both an activity phrase and a reflect phrase; activity
	// statements are checked first.
	got := Classify("I built a robot and i learned a lot")
	if got != types.IntentLifeLog {
		t.Fatalf("got %s, want LIFE_LOG", got)
	}
}

func TestSelectProfile(t *testing.T) {
	if got := SelectProfile("who profits here?", types.IntentInvestigate); got != types.ProfileInvestigation {
		t.Fatalf("investigate intent: got %s", got)
	}
	if got := SelectProfile("give me a deep analysis of this poem", types.IntentChat); got != types.ProfileDeepAnalysis {
		t.Fatalf("deep analysis keywords: got %s", got)
	}
	if got := SelectProfile("Hello!", types.IntentChat); got != types.ProfileGeneral {
		t.Fatalf("default: got %s", got)
	}
}

func TestRouteDeterministicMatchSkipsFallback(t *testing.T) {
	ai := &fakeAI{}
	r := NewRouter(testLogger(t), ai)

	st, err := r.Route(context.Background(), types.PipelineState{Prompt: "I baked sourdough bread today"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if st.Intent != types.IntentLifeLog {
		t.Fatalf("intent = %s, want LIFE_LOG", st.Intent)
	}
	if ai.calls != 0 {
		t.Fatalf("deterministic match must not call the model (calls=%d)", ai.calls)
	}
}

func TestRouteFallbackFailureKeepsChat(t *testing.T) {
	r := NewRouter(testLogger(t), &fakeAI{err: errors.New("provider down")})

	st, err := r.Route(context.Background(), types.PipelineState{Prompt: "Hello!"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if st.Intent != types.IntentChat {
		t.Fatalf("intent = %s, want CHAT", st.Intent)
	}
}

func TestRouteFallbackLabelHandling(t *testing.T) {
	r := NewRouter(testLogger(t), &fakeAI{jsonOut: map[string]any{"intent": "BRAINSTORM"}})
	st, _ := r.Route(context.Background(), types.PipelineState{Prompt: "what should I do this summer"})
	if st.Intent != types.IntentBrainstorm {
		t.Fatalf("recognized label must win: got %s", st.Intent)
	}

	r = NewRouter(testLogger(t), &fakeAI{jsonOut: map[string]any{"intent": "BANANA"}})
	st, _ = r.Route(context.Background(), types.PipelineState{Prompt: "what should I do this summer"})
	if st.Intent != types.IntentChat {
		t.Fatalf("unrecognized label must keep CHAT: got %s", st.Intent)
	}
}

func TestRouteMediaOverride(t *testing.T) {
	ai := &fakeAI{}
	r := NewRouter(testLogger(t), ai)

	st, _ := r.Route(context.Background(), types.PipelineState{
		Prompt:   "I baked sourdough bread today",
		ImageURL: "https://example.com/bread.jpg",
	})
	if st.Intent != types.IntentImageLog {
		t.Fatalf("attached image must force IMAGE_LOG, got %s", st.Intent)
	}
	if ai.calls != 0 {
		t.Fatalf("media override must skip text classification")
	}

	st, _ = r.Route(context.Background(), types.PipelineState{
		Prompt:     "voice note",
		AudioBytes: []byte{1, 2, 3},
	})
	if st.Intent != types.IntentVoiceLog {
		t.Fatalf("attached audio must force VOICE_LOG, got %s", st.Intent)
	}
}
