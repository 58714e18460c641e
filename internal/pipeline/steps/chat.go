package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/types"
)

const chatSystemPrompt = `You are a friendly tutor chatting with a student.
Be warm, brief, and curious about what they're learning.`

// Chat is the default responder when no specialized node applies.
func Chat(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	var b strings.Builder
	for _, m := range recentHistory(st.History, 6) {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "student: %s", st.Prompt)

	text, err := deps.AI.GenerateText(ctx, chatSystemPrompt, b.String())
	if err != nil {
		return st, fmt.Errorf("chat response: %w", err)
	}
	st.ResponseText = text
	return st, nil
}
