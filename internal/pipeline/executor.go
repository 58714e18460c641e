package pipeline

import (
	"context"
	"fmt"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/pipeline/steps"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

type stageFn func(ctx context.Context, st types.PipelineState) (types.PipelineState, error)

// Executor runs one message through ROUTED -> AGENT_RUN -> UI_PLANNED ->
// GAP_CHECKED -> DONE. A stage that errors or panics is recorded and the
// unmodified prior state flows on; Run never fails.
type Executor struct {
	log    *logger.Logger
	router *Router
	deps   steps.Deps
}

func NewExecutor(baseLog *logger.Logger, router *Router, deps steps.Deps) *Executor {
	return &Executor{
		log:    baseLog.With("component", "PipelineExecutor"),
		router: router,
		deps:   deps,
	}
}

func (e *Executor) Run(ctx context.Context, st types.PipelineState) types.PipelineState {
	st = e.runStage(ctx, types.StageRouted, st, e.router.Route)
	st = e.runStage(ctx, types.StageAgentRun, st, e.agentFor(st))
	st = e.runStage(ctx, types.StageUIPlanned, st, func(_ context.Context, s types.PipelineState) (types.PipelineState, error) {
		s.UI = PlanUI(s)
		return s, nil
	})
	st = e.runStage(ctx, types.StageGapChecked, st, func(c context.Context, s types.PipelineState) (types.PipelineState, error) {
		return steps.GapCheck(c, e.deps, s)
	})
	st.Stages = append(st.Stages, types.StageResult{Stage: types.StageDone})
	return st
}

// agentFor is the intent dispatch table. A pending reflection marker takes
// precedence over the nominal intent; media intents chain their
// pre-processor into the activity node.
func (e *Executor) agentFor(st types.PipelineState) stageFn {
	if st.PendingReflection != nil {
		return e.node(steps.Reflect)
	}

	switch st.Intent {
	case types.IntentLifeLog:
		return e.node(steps.LifeLog)
	case types.IntentInvestigate:
		return e.node(steps.Investigate)
	case types.IntentBrainstorm:
		return e.node(steps.Brainstorm)
	case types.IntentOpportunity:
		return e.node(steps.Opportunity)
	case types.IntentReflect:
		return e.node(steps.Reflect)
	case types.IntentImageLog:
		return e.chainMedia(steps.PrepareImage)
	case types.IntentVoiceLog:
		return e.chainMedia(steps.PrepareVoice)
	case types.IntentGenUI, types.IntentChat:
		return e.node(steps.Chat)
	default:
		return e.node(steps.Chat)
	}
}

func (e *Executor) node(fn func(context.Context, steps.Deps, types.PipelineState) (types.PipelineState, error)) stageFn {
	return func(ctx context.Context, st types.PipelineState) (types.PipelineState, error) {
		return fn(ctx, e.deps, st)
	}
}

func (e *Executor) chainMedia(pre func(context.Context, steps.Deps, types.PipelineState) (types.PipelineState, error)) stageFn {
	return func(ctx context.Context, st types.PipelineState) (types.PipelineState, error) {
		next, err := pre(ctx, e.deps, st)
		if err != nil {
			return st, err
		}
		if next.MediaFailed {
			// Degraded apology is already the response text.
			return next, nil
		}
		return steps.LifeLog(ctx, e.deps, next)
	}
}

// runStage applies the containment contract: on error or panic the stage's
// partial result is discarded, the failure is appended to the ordered stage
// list, and the prior state continues.
func (e *Executor) runStage(ctx context.Context, stage types.PipelineStage, prior types.PipelineState, fn stageFn) (out types.PipelineState) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Pipeline stage panicked", "stage", stage, "panic", r)
			out = prior
			out.Stages = append(out.Stages, types.StageResult{
				Stage: stage,
				Error: fmt.Sprintf("panic: %v", r),
			})
		}
	}()

	next, err := fn(ctx, prior)
	if err != nil {
		e.log.Warn("Pipeline stage failed", "stage", stage, "error", err)
		out = prior
		out.Stages = append(out.Stages, types.StageResult{Stage: stage, Error: err.Error()})
		return out
	}
	next.Stages = append(next.Stages, types.StageResult{Stage: stage})
	return next
}
