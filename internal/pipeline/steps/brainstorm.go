package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

const brainstormSystemPrompt = `You are an encouraging project mentor for a student.
Affirm their idea, then sketch a concrete project plan in their own direction.
If stretch concepts are listed, weave in at most two of them as optional
stretch goals, by name, without lecturing.`

// Brainstorm turns an idea into an affirming project plan, optionally
// stretched toward one or two concepts the learner is ready for, and
// composes the fixed three-step mission scaffold.
func Brainstorm(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	stretch, err := deps.Mastery.SelectZPD(ctx, st.UserID, 2, "")
	if err != nil {
		deps.Log.Warn("ZPD lookup failed, brainstorming without stretch goals", "user_id", st.UserID, "error", err)
		stretch = nil
	}

	var names []string
	for _, s := range stretch {
		names = append(names, s.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Idea: %s\n", st.Prompt)
	if len(names) > 0 {
		fmt.Fprintf(&b, "Stretch concepts: %s\n", strings.Join(names, ", "))
	}
	for _, m := range recentHistory(st.History, 4) {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	text, err := deps.AI.GenerateText(ctx, brainstormSystemPrompt, b.String())
	if err != nil {
		return st, fmt.Errorf("brainstorm plan: %w", err)
	}

	st.ResponseText = text
	st.MissionBriefing = &types.MissionBriefingDraft{
		Title: "Your project mission",
		Steps: []string{
			"Start small: build the simplest version this week.",
			"Show someone: share what you made and collect one piece of feedback.",
			"Level up: pick one stretch goal and fold it into version two.",
		},
	}
	return st, nil
}

func recentHistory(history []types.ChatMessage, n int) []types.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
