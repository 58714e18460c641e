package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

const investigateTopSources = 5

const investigateSystemPrompt = `You are a Socratic research guide for a student.
Answer the question using ONLY the numbered sources provided. Cite sources
inline as [1], [2]. Prefer primary sources over commentary. If the sources do
not answer the question, say what is missing and suggest where to look.`

// Investigate retrieves source documents, highest-provenance first, and
// produces a cited summary grounded only in the retrieved set.
func Investigate(ctx context.Context, deps Deps, st types.PipelineState) (types.PipelineState, error) {
	var docs []services.SourceDoc
	if deps.Docs != nil {
		var err error
		docs, err = deps.Docs.Search(ctx, st.Prompt, investigateTopSources)
		if err != nil {
			return st, fmt.Errorf("source retrieval: %w", err)
		}
	}

	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] (%s) %s — %s\n", i+1, d.SourceType, d.Title, d.Snippet)
	}
	if b.Len() == 0 {
		b.WriteString("(no sources retrieved)\n")
	}
	user := fmt.Sprintf("Question: %s\n\nSources:\n%s", st.Prompt, b.String())

	text, err := deps.AI.GenerateText(ctx, investigateSystemPrompt, user)
	if err != nil {
		return st, fmt.Errorf("investigation summary: %w", err)
	}

	st.InvestigationRan = true
	st.Sources = make([]types.InvestigationSource, 0, len(docs))
	for _, d := range docs {
		st.Sources = append(st.Sources, types.InvestigationSource{
			Title:      d.Title,
			URL:        d.URL,
			SourceType: d.SourceType,
		})
	}
	st.ResponseText = text
	return st, nil
}
