package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/config"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

const lifeLogSystemPrompt = `You map a student's real-world activity onto an activity rule table.
Pick the single best matching rule, or report no match. Credits are awarded
on a 1-credit-per-180-hours scale: credits = hours / 180. Estimate hours from
the description, defaulting to the rule's typical hours.`

var lifeLogSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"matched", "rule_key", "subjects", "credits", "extension"},
	"properties": map[string]any{
		"matched":   map[string]any{"type": "boolean"},
		"rule_key":  map[string]any{"type": "string"},
		"subjects":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"credits":   map[string]any{"type": "number"},
		"extension": map[string]any{"type": "string"},
	},
}

// LifeLog maps an activity statement to subjects and credits, persists a
// transcript entry, and schedules matched concepts for review. A mapping the
// model could not produce is a soft no-match, never a pipeline failure.
func LifeLog(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	user := fmt.Sprintf("Rule table:\n%s\nActivity: %q", describeRules(deps.Rules), st.Prompt)

	obj, err := deps.AI.GenerateJSON(ctx, lifeLogSystemPrompt, user, "activity_mapping", lifeLogSchema)
	if err != nil {
		deps.Log.Warn("Activity mapping failed, degrading to no match", "user_id", st.UserID, "error", err)
		return lifeLogNoMatch(st), nil
	}

	mapping := parseCreditMapping(obj)
	if !mapping.Matched || len(mapping.Subjects) == 0 {
		return lifeLogNoMatch(st), nil
	}
	st.CreditMapping = &mapping

	source := "chat"
	switch st.Intent {
	case types.IntentImageLog:
		source = "image"
	case types.IntentVoiceLog:
		source = "voice"
	}

	st.TranscriptDraft = &types.TranscriptDraft{
		Title:       titleCase(strings.ReplaceAll(mapping.RuleKey, "_", " ")),
		Description: st.Prompt,
		Subjects:    mapping.Subjects,
		Credits:     mapping.Credits,
		RuleKey:     mapping.RuleKey,
		Source:      source,
	}

	subjectsRaw, _ := json.Marshal(mapping.Subjects)
	if _, err := deps.Transcripts.Create(ctx, nil, []*types.TranscriptEntry{{
		UserID:      st.UserID,
		Title:       st.TranscriptDraft.Title,
		Description: st.Prompt,
		Subjects:    subjectsRaw,
		Credits:     mapping.Credits,
		RuleKey:     mapping.RuleKey,
		Source:      source,
	}}); err != nil {
		return st, fmt.Errorf("persist transcript entry: %w", err)
	}

	// Fuzzy-match concepts against the mapped subjects and give each a
	// first review schedule. Existing schedules are untouched.
	concepts, err := deps.Concepts.SearchByName(ctx, nil, mapping.Subjects, 10)
	if err != nil {
		deps.Log.Warn("Concept lookup failed, skipping review scheduling", "user_id", st.UserID, "error", err)
	} else {
		for _, c := range concepts {
			if sErr := deps.Mastery.ScheduleConceptReview(ctx, st.UserID, c.ID); sErr != nil {
				deps.Log.Warn("Review scheduling failed", "user_id", st.UserID, "concept_id", c.ID, "error", sErr)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nice work! I logged that as %s", strings.Join(mapping.Subjects, " + "))
	fmt.Fprintf(&b, " and credited %.2f credits toward your transcript.", mapping.Credits)
	if mapping.Extension != "" {
		fmt.Fprintf(&b, " Want to take it further? %s", mapping.Extension)
	}
	st.ResponseText = b.String()
	return st, nil
}

func lifeLogNoMatch(st types.PipelineState) types.PipelineState {
	st.CreditMapping = &types.CreditMapping{Matched: false}
	st.ResponseText = "That sounds interesting! I couldn't match it to a subject yet — tell me a bit more about what you did."
	return st
}

func describeRules(rules *config.Rules) string {
	var b strings.Builder
	for _, rule := range rules.ActivityRules {
		fmt.Fprintf(&b, "- key=%s subjects=%s typical_hours=%.1f examples: %s\n",
			rule.Key,
			strings.Join(rule.Subjects, ","),
			rule.TypicalHours,
			strings.Join(rule.Examples, "; "),
		)
	}
	return b.String()
}

func parseCreditMapping(obj map[string]any) types.CreditMapping {
	out := types.CreditMapping{}
	if v, ok := obj["matched"].(bool); ok {
		out.Matched = v
	}
	if v, ok := obj["rule_key"].(string); ok {
		out.RuleKey = strings.TrimSpace(v)
	}
	if v, ok := obj["credits"].(float64); ok && v > 0 {
		out.Credits = v
	}
	if v, ok := obj["extension"].(string); ok {
		out.Extension = strings.TrimSpace(v)
	}
	if arr, ok := obj["subjects"].([]any); ok {
		for _, s := range arr {
			if str, ok := s.(string); ok && strings.TrimSpace(str) != "" {
				out.Subjects = append(out.Subjects, strings.TrimSpace(str))
			}
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
