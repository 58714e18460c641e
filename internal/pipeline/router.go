// Package pipeline sequences one learner message through intent routing, a
// specialized agent node, UI planning, and gap detection, isolating failures
// per stage.
package pipeline

import (
	"context"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// Deterministic matcher rule classes, checked in order. Activity statements
// are checked before everything else; first matching class wins.
var (
	lifeLogPhrases = []string{
		"i built", "i baked", "i made", "i cooked", "i volunteered",
		"i planted", "i wrote", "i coded", "i fixed", "i repaired",
		"i organized", "i practiced",
	}
	brainstormPhrases  = []string{"brainstorm", "idea"}
	investigatePhrases = []string{
		"who profits", "follow the money", "investigate",
		"regulatory capture", "what really happened",
	}
	reflectPhrases = []string{
		"i learned", "i realized", "i noticed", "i struggled with",
		"i understand now", "it clicked",
	}
	deepAnalysisPhrases = []string{"deep analysis", "in depth", "thorough analysis"}
)

// Classify is the fast deterministic tier of intent routing. It is pure and
// ordering-sensitive; CHAT means "no rule matched", not a definite answer.
func Classify(prompt string) types.Intent {
	p := strings.ToLower(prompt)

	for _, phrase := range lifeLogPhrases {
		if strings.Contains(p, phrase) {
			return types.IntentLifeLog
		}
	}
	for _, phrase := range brainstormPhrases {
		if strings.Contains(p, phrase) {
			return types.IntentBrainstorm
		}
	}
	for _, phrase := range investigatePhrases {
		if strings.Contains(p, phrase) {
			return types.IntentInvestigate
		}
	}
	if strings.Contains(p, "opportunit") {
		return types.IntentOpportunity
	}
	for _, phrase := range reflectPhrases {
		if strings.Contains(p, phrase) {
			return types.IntentReflect
		}
	}
	return types.IntentChat
}

// SelectProfile picks the generation tier. The decision is independent of
// intent detection and never alters the detected intent.
func SelectProfile(prompt string, intent types.Intent) types.ModelProfile {
	p := strings.ToLower(prompt)
	for _, phrase := range deepAnalysisPhrases {
		if strings.Contains(p, phrase) {
			return types.ProfileDeepAnalysis
		}
	}
	if intent == types.IntentInvestigate {
		return types.ProfileInvestigation
	}
	for _, phrase := range investigatePhrases {
		if strings.Contains(p, phrase) {
			return types.ProfileInvestigation
		}
	}
	return types.ProfileGeneral
}

const routerFallbackSystem = `Classify the student's message into exactly one of:
CHAT, LIFE_LOG, BRAINSTORM, INVESTIGATE, OPPORTUNITY, REFLECT, GEN_UI.`

var routerFallbackSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"intent"},
	"properties": map[string]any{
		"intent": map[string]any{"type": "string"},
	},
}

var recognizedIntents = map[types.Intent]bool{
	types.IntentChat:        true,
	types.IntentLifeLog:     true,
	types.IntentBrainstorm:  true,
	types.IntentInvestigate: true,
	types.IntentOpportunity: true,
	types.IntentReflect:     true,
	types.IntentGenUI:       true,
}

// Router performs two-tier intent classification with a media override.
type Router struct {
	log *logger.Logger
	ai  services.AIClient
}

func NewRouter(baseLog *logger.Logger, ai services.AIClient) *Router {
	return &Router{log: baseLog.With("component", "Router"), ai: ai}
}

// Route fills in intent and model profile. Attached media forces the
// matching media intent before any text classification. A deterministic
// non-CHAT match is final; only CHAT consults the model, and any fallback
// failure or unrecognized label leaves CHAT standing.
func (r *Router) Route(ctx context.Context, st types.PipelineState) (types.PipelineState, error) {
	if len(st.ImageBytes) > 0 || strings.TrimSpace(st.ImageURL) != "" {
		st.Intent = types.IntentImageLog
		st.Profile = SelectProfile(st.Prompt, types.IntentImageLog)
		return st, nil
	}
	if len(st.AudioBytes) > 0 {
		st.Intent = types.IntentVoiceLog
		st.Profile = SelectProfile(st.Prompt, types.IntentVoiceLog)
		return st, nil
	}

	intent := Classify(st.Prompt)
	if intent == types.IntentChat && r.ai != nil {
		obj, err := r.ai.GenerateJSON(ctx, routerFallbackSystem, st.Prompt, "intent_label", routerFallbackSchema)
		if err != nil {
			r.log.Warn("Fallback classifier failed, keeping CHAT", "error", err)
		} else if label, ok := obj["intent"].(string); ok {
			candidate := types.Intent(strings.ToUpper(strings.TrimSpace(label)))
			if recognizedIntents[candidate] {
				intent = candidate
			}
		}
	}

	st.Intent = intent
	st.Profile = SelectProfile(st.Prompt, intent)
	return st, nil
}
