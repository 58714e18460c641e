package pipeline

import (
	"regexp"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// PlanUI selects the structured payload accompanying the text response.
// Pure function; priority-ordered rules, first match wins, nil when nothing
// applies.
func PlanUI(st types.PipelineState) *types.UIPayload {
	if st.TranscriptDraft != nil {
		return &types.UIPayload{
			Kind: types.UITranscriptCard,
			Data: map[string]any{"draft": st.TranscriptDraft},
		}
	}
	if st.InvestigationRan {
		return &types.UIPayload{
			Kind: types.UIInvestigationBoard,
			Data: map[string]any{"sources": st.Sources},
		}
	}
	if st.Intent == types.IntentBrainstorm {
		return &types.UIPayload{
			Kind: types.UIProjectImpactCard,
			Data: map[string]any{"briefing": st.MissionBriefing},
		}
	}
	if st.Intent == types.IntentOpportunity {
		return &types.UIPayload{Kind: types.UIMissionBriefing}
	}
	if yearPattern.MatchString(st.ResponseText) || strings.Contains(strings.ToLower(st.ResponseText), "timeline") {
		return &types.UIPayload{Kind: types.UITimeline}
	}
	if len(st.OpenGaps) > 0 {
		return &types.UIPayload{
			Kind: types.UIConceptMap,
			Data: map[string]any{"gaps": st.OpenGaps},
		}
	}
	return nil
}
