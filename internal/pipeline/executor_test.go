package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/mentorloop-backend/internal/config"
	"github.com/yungbote/mentorloop-backend/internal/pipeline/steps"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

func testExecutor(t *testing.T, ai *fakeAI) *Executor {
	t.Helper()
	log := testLogger(t)
	deps := steps.Deps{
		Log:   log,
		AI:    ai,
		Rules: config.Default(),
	}
	return NewExecutor(log, NewRouter(log, ai), deps)
}

func stageErrors(st types.PipelineState) map[types.PipelineStage]string {
	out := map[types.PipelineStage]string{}
	for _, s := range st.Stages {
		if s.Error != "" {
			out[s.Stage] = s.Error
		}
	}
	return out
}

func TestRunHappyChat(t *testing.T) {
	// No scripted JSON: the fallback classifier yields no usable label and
	// CHAT stands; the chat node then answers.
	e := testExecutor(t, &fakeAI{text: "Hi there! What are you curious about today?"})

	st := e.Run(context.Background(), types.PipelineState{Prompt: "Hello!"})

	if st.Intent != types.IntentChat {
		t.Fatalf("intent = %s, want CHAT", st.Intent)
	}
	if st.ResponseText != "Hi there! What are you curious about today?" {
		t.Fatalf("unexpected response: %q", st.ResponseText)
	}
	if errs := stageErrors(st); len(errs) != 0 {
		t.Fatalf("no stage errors expected: %+v", st.Stages)
	}
	if len(st.Stages) == 0 || st.Stages[len(st.Stages)-1].Stage != types.StageDone {
		t.Fatalf("run must end in DONE: %+v", st.Stages)
	}
}

func TestRunAgentFailureIsContained(t *testing.T) {
	// Generation is down: the fallback classifier and the chat node both
	// fail, but UI planning and gap checking still run and Run returns.
	e := testExecutor(t, &fakeAI{err: errors.New("provider down")})

	st := e.Run(context.Background(), types.PipelineState{Prompt: "Hello!"})

	errs := stageErrors(st)
	if errs[types.StageAgentRun] == "" {
		t.Fatalf("agent failure must be recorded: %+v", st.Stages)
	}
	if errs[types.StageUIPlanned] != "" || errs[types.StageGapChecked] != "" {
		t.Fatalf("later stages must still succeed: %+v", st.Stages)
	}
	if st.ResponseText != "" {
		t.Fatalf("failed agent stage must not leak partial output: %q", st.ResponseText)
	}
	if st.Stages[len(st.Stages)-1].Stage != types.StageDone {
		t.Fatalf("run must still end in DONE: %+v", st.Stages)
	}
}

func TestRunStagePanicIsContained(t *testing.T) {
	e := testExecutor(t, &fakeAI{})

	st := e.runStage(context.Background(), types.StageAgentRun,
		types.PipelineState{Prompt: "x"},
		func(context.Context, types.PipelineState) (types.PipelineState, error) {
			panic("boom")
		})

	errs := stageErrors(st)
	if errs[types.StageAgentRun] == "" {
		t.Fatalf("panic must be recorded as a stage error: %+v", st.Stages)
	}
	if st.Prompt != "x" {
		t.Fatalf("prior state must be preserved")
	}
}

func TestRunMediaDegradesToApology(t *testing.T) {
	// Image attached but every capability fails: the pre-processor must
	// degrade to the apology instead of failing the run, and the chained
	// activity node must be skipped.
	e := testExecutor(t, &fakeAI{err: errors.New("provider down")})

	st := e.Run(context.Background(), types.PipelineState{
		Prompt:   "photo of my project",
		ImageURL: "https://example.com/p.jpg",
	})

	if st.Intent != types.IntentImageLog {
		t.Fatalf("intent = %s, want IMAGE_LOG", st.Intent)
	}
	if !st.MediaFailed {
		t.Fatalf("media failure flag must be set")
	}
	if st.ResponseText != steps.MediaApology {
		t.Fatalf("response = %q, want the apology", st.ResponseText)
	}
	if errs := stageErrors(st); errs[types.StageAgentRun] != "" {
		t.Fatalf("degraded media is not a stage error: %+v", st.Stages)
	}
}

func TestRunPendingReflectionPrecedence(t *testing.T) {
	// A pending marker forces score mode even for a message that would
	// classify as LIFE_LOG.
	ai := &fakeAI{jsonOut: map[string]any{"score": 0.9, "followup": "Love that connection!"}}
	e := testExecutor(t, ai)

	st := e.Run(context.Background(), types.PipelineState{
		Prompt: "I baked sourdough bread today",
		PendingReflection: &types.ReflectionMarker{
			Dimension:           "Process",
			Prompt:              "What did you do first?",
			ActivityDescription: "baking",
		},
	})

	if st.PendingReflection != nil {
		t.Fatalf("score mode must clear the marker")
	}
	if st.ReflectionScore == nil || *st.ReflectionScore != 0.9 {
		t.Fatalf("score not recorded: %+v", st.ReflectionScore)
	}
	if st.ResponseText != "Love that connection!" {
		t.Fatalf("unexpected response: %q", st.ResponseText)
	}
}
