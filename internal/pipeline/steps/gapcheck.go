package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

// A subject with fewer accumulated credits than this is flagged as a gap.
const gapCreditThreshold = 0.5

// GapCheck compares accumulated subject credits against the grade band's
// expectation table, upserts a LearningGap per shortfall, and composes a
// nudge. No gaps is a clean outcome, not an error.
func GapCheck(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	expectations := deps.Rules.ExpectationsForBand(st.GradeBand)
	if len(expectations) == 0 {
		return st, nil
	}

	entries, err := deps.Transcripts.GetByUser(ctx, nil, st.UserID)
	if err != nil {
		return st, fmt.Errorf("load transcript: %w", err)
	}

	accumulated := map[string]float64{}
	for _, e := range entries {
		var subjects []string
		if len(e.Subjects) > 0 {
			_ = json.Unmarshal(e.Subjects, &subjects)
		}
		for _, s := range subjects {
			accumulated[s] += e.Credits
		}
	}

	var flagged []string
	for subject := range expectations {
		if accumulated[subject] < gapCreditThreshold {
			flagged = append(flagged, subject)
		}
	}
	sort.Strings(flagged)
	if len(flagged) == 0 {
		return st, nil
	}

	for _, subject := range flagged {
		existing, gErr := deps.Gaps.GetUnaddressed(ctx, nil, st.UserID, subject)
		if gErr != nil {
			return st, fmt.Errorf("load gap for %s: %w", subject, gErr)
		}
		if existing != nil {
			if uErr := deps.Gaps.UpdateCredits(ctx, nil, existing.ID, accumulated[subject]); uErr != nil {
				return st, fmt.Errorf("update gap for %s: %w", subject, uErr)
			}
			continue
		}
		if _, cErr := deps.Gaps.Create(ctx, nil, &types.LearningGap{
			UserID:             st.UserID,
			Subject:            subject,
			ExpectedCredits:    expectations[subject],
			AccumulatedCredits: accumulated[subject],
		}); cErr != nil {
			return st, fmt.Errorf("create gap for %s: %w", subject, cErr)
		}
	}

	st.OpenGaps = flagged
	st.GapNudge = composeGapNudge(flagged, st.Interests)
	return st, nil
}

func composeGapNudge(flagged, interests []string) string {
	aligned := ""
	for _, subject := range flagged {
		for _, interest := range interests {
			if strings.Contains(strings.ToLower(subject), strings.ToLower(interest)) ||
				strings.Contains(strings.ToLower(interest), strings.ToLower(subject)) {
				aligned = subject
				break
			}
		}
		if aligned != "" {
			break
		}
	}

	if aligned != "" {
		return fmt.Sprintf("You've been into %s lately — a small %s project would count toward it and close a gap on your transcript.",
			strings.ToLower(aligned), aligned)
	}
	return fmt.Sprintf("Heads up: your transcript is light on %s. Want ideas for a quick activity that counts?",
		strings.Join(flagged, " and "))
}
