package steps

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

// The five reflection dimensions a Socratic prompt can target. The choice is
// a deterministic hash of the activity description so the same activity
// always yields the same dimension.
var reflectionDimensions = []string{"Process", "Challenge", "Connection", "Transfer", "Growth"}

const reflectPromptSystem = `You are a reflection coach for a student.
Ask exactly one short, warm Socratic question about the activity below,
targeting the given reflection dimension. No preamble, just the question.`

const reflectScoreSystem = `You are a reflection coach scoring a student's answer
to an earlier Socratic question. Score the depth of reflection from 0.0 to 1.0
and write one warm, specific follow-up sentence.`

var reflectScoreSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"score", "followup"},
	"properties": map[string]any{
		"score":    map[string]any{"type": "number"},
		"followup": map[string]any{"type": "string"},
	},
}

// ReflectionDimensionFor picks the prompt dimension for an activity.
func ReflectionDimensionFor(activity string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(activity))
	return reflectionDimensions[int(h.Sum32())%len(reflectionDimensions)]
}

// Reflect runs in one of two mutually exclusive modes. With a pending marker
// in state, the message is scored against the earlier prompt and the marker
// cleared; otherwise a new Socratic prompt is generated and a marker set.
func Reflect(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	if st.PendingReflection != nil {
		return reflectScore(ctx, deps, st)
	}
	return reflectPrompt(ctx, deps, st)
}

func reflectPrompt(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	dimension := ReflectionDimensionFor(st.Prompt)
	user := fmt.Sprintf("Dimension: %s\nActivity: %s", dimension, st.Prompt)

	question, err := deps.AI.GenerateText(ctx, reflectPromptSystem, user)
	if err != nil {
		return st, fmt.Errorf("reflection prompt: %w", err)
	}

	st.ResponseText = question
	st.PendingReflection = &types.ReflectionMarker{
		Dimension:           dimension,
		Prompt:              question,
		ActivityDescription: st.Prompt,
		CreatedAt:           time.Now().UTC(),
	}
	return st, nil
}

func reflectScore(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	marker := st.PendingReflection
	user := fmt.Sprintf("Question (%s): %s\nActivity: %s\nStudent's answer: %s",
		marker.Dimension, marker.Prompt, marker.ActivityDescription, st.Prompt)

	obj, err := deps.AI.GenerateJSON(ctx, reflectScoreSystem, user, "reflection_score", reflectScoreSchema)
	if err != nil {
		return st, fmt.Errorf("reflection scoring: %w", err)
	}

	score := 0.5
	if v, ok := obj["score"].(float64); ok {
		score = clampUnit(v)
	}
	followup := "Thanks for reflecting — that kind of thinking is how learning sticks."
	if v, ok := obj["followup"].(string); ok && v != "" {
		followup = v
	}

	if marker.ConceptID != nil {
		// Deep reflection nudges mastery up, shallow slightly down.
		delta := (score - 0.5) * 0.1
		if _, mErr := deps.Mastery.UpdateMastery(ctx, st.UserID, *marker.ConceptID, delta, "reflection", marker.Dimension); mErr != nil {
			deps.Log.Warn("Reflection mastery update failed", "user_id", st.UserID, "concept_id", marker.ConceptID, "error", mErr)
		}
	}

	st.ReflectionScore = &score
	st.ResponseText = followup
	st.PendingReflection = nil
	return st, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
