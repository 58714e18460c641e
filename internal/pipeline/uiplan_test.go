package pipeline

import (
	"testing"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

func TestPlanUIFirstMatchWins(t *testing.T) {
	// Transcript draft outranks everything else.
	st := types.PipelineState{
		Intent:           types.IntentBrainstorm,
		TranscriptDraft:  &types.TranscriptDraft{Title: "Baking"},
		InvestigationRan: true,
		OpenGaps:         []string{"Science"},
	}
	if got := PlanUI(st); got == nil || got.Kind != types.UITranscriptCard {
		t.Fatalf("got %+v, want TranscriptCard", got)
	}

	st.TranscriptDraft = nil
	if got := PlanUI(st); got == nil || got.Kind != types.UIInvestigationBoard {
		t.Fatalf("got %+v, want InvestigationBoard", got)
	}

	st.InvestigationRan = false
	if got := PlanUI(st); got == nil || got.Kind != types.UIProjectImpactCard {
		t.Fatalf("got %+v, want ProjectImpactCard", got)
	}

	st.Intent = types.IntentOpportunity
	if got := PlanUI(st); got == nil || got.Kind != types.UIMissionBriefing {
		t.Fatalf("got %+v, want MissionBriefing", got)
	}

	st.Intent = types.IntentChat
	st.ResponseText = "The war ended in 1945."
	if got := PlanUI(st); got == nil || got.Kind != types.UITimeline {
		t.Fatalf("4-digit year must plan a Timeline, got %+v", got)
	}

	st.ResponseText = "Here is a timeline of events."
	if got := PlanUI(st); got == nil || got.Kind != types.UITimeline {
		t.Fatalf("the word timeline must plan a Timeline, got %+v", got)
	}

	st.ResponseText = "Nice work!"
	if got := PlanUI(st); got == nil || got.Kind != types.UIConceptMap {
		t.Fatalf("open gaps must plan a ConceptMap, got %+v", got)
	}

	st.OpenGaps = nil
	if got := PlanUI(st); got != nil {
		t.Fatalf("nothing applies, want nil, got %+v", got)
	}
}
