package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

const opportunityMaxKeywords = 4

const opportunityKeywordSystem = `Extract up to 4 short interest keywords from the
student's message, lowercase, most specific first.`

const opportunitySummarySystem = `You are a warm, encouraging guide. Summarize the
opportunities below for a student: what each one is, why it might fit them,
and how to take the first step. Keep it short and inviting.`

var opportunityKeywordSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"keywords"},
	"properties": map[string]any{
		"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

// Opportunity matches the learner with posted opportunities. Stated
// interests win over inference; an empty filtered query falls back to the
// most recent postings rather than an empty answer.
func Opportunity(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	keywords := interestKeywords(st.Interests)
	if len(keywords) == 0 {
		inferred, err := deps.AI.GenerateJSON(ctx, opportunityKeywordSystem, st.Prompt, "interest_keywords", opportunityKeywordSchema)
		if err != nil {
			deps.Log.Warn("Keyword inference failed, querying unfiltered", "user_id", st.UserID, "error", err)
		} else if arr, ok := inferred["keywords"].([]any); ok {
			for _, k := range arr {
				if s, ok := k.(string); ok && strings.TrimSpace(s) != "" {
					keywords = append(keywords, strings.ToLower(strings.TrimSpace(s)))
				}
				if len(keywords) >= opportunityMaxKeywords {
					break
				}
			}
		}
	}

	opps, err := deps.Opportunities.ListFiltered(ctx, nil, st.GradeBand, keywords, 5)
	if err != nil {
		return st, fmt.Errorf("opportunity query: %w", err)
	}
	if len(opps) == 0 {
		opps, err = deps.Opportunities.ListRecent(ctx, nil, 5)
		if err != nil {
			return st, fmt.Errorf("recent opportunities: %w", err)
		}
	}
	if len(opps) == 0 {
		st.ResponseText = "I don't see any open opportunities right now, but new ones get posted all the time — ask me again soon!"
		return st, nil
	}

	var b strings.Builder
	for _, o := range opps {
		var kw []string
		if len(o.Keywords) > 0 {
			_ = json.Unmarshal(o.Keywords, &kw)
		}
		fmt.Fprintf(&b, "- %s: %s (keywords: %s)\n", o.Title, o.Description, strings.Join(kw, ", "))
	}

	text, err := deps.AI.GenerateText(ctx, opportunitySummarySystem, b.String())
	if err != nil {
		return st, fmt.Errorf("opportunity summary: %w", err)
	}
	st.ResponseText = text
	return st, nil
}

func interestKeywords(interests []string) []string {
	out := make([]string, 0, opportunityMaxKeywords)
	for _, i := range interests {
		i = strings.ToLower(strings.TrimSpace(i))
		if i == "" {
			continue
		}
		out = append(out, i)
		if len(out) >= opportunityMaxKeywords {
			break
		}
	}
	return out
}
