package types

import (
	"time"

	"github.com/google/uuid"
)

// Intent classifies the purpose of a learner message and selects the
// processing branch.
type Intent string

const (
	IntentChat        Intent = "CHAT"
	IntentLifeLog     Intent = "LIFE_LOG"
	IntentBrainstorm  Intent = "BRAINSTORM"
	IntentInvestigate Intent = "INVESTIGATE"
	IntentOpportunity Intent = "OPPORTUNITY"
	IntentReflect     Intent = "REFLECT"
	IntentGenUI       Intent = "GEN_UI"
	// Media overrides. Applied before any text classification when the
	// message carries an attachment.
	IntentImageLog Intent = "IMAGE_LOG"
	IntentVoiceLog Intent = "VOICE_LOG"
)

// ModelProfile selects the generation tier for a run. Profile selection is
// independent of intent detection and never alters the detected intent.
type ModelProfile string

const (
	ProfileGeneral       ModelProfile = "general"
	ProfileInvestigation ModelProfile = "investigation"
	ProfileDeepAnalysis  ModelProfile = "deep_analysis"
)

// PipelineStage names one executor transition.
type PipelineStage string

const (
	StageRouted     PipelineStage = "ROUTED"
	StageAgentRun   PipelineStage = "AGENT_RUN"
	StageUIPlanned  PipelineStage = "UI_PLANNED"
	StageGapChecked PipelineStage = "GAP_CHECKED"
	StageDone       PipelineStage = "DONE"
)

// StageResult is one entry in the ordered per-run outcome list. A stage that
// failed carries its error; the stages after it still ran against the state
// as it was before the failure.
type StageResult struct {
	Stage PipelineStage `json:"stage"`
	Error string        `json:"error,omitempty"`
	Note  string        `json:"note,omitempty"`
}

// ChatMessage is one turn of conversation context, most recent last.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreditMapping is the LIFE_LOG matcher outcome. Matched false means the
// activity fit no configured rule; that is a soft outcome, not an error.
type CreditMapping struct {
	Matched   bool     `json:"matched"`
	RuleKey   string   `json:"rule_key,omitempty"`
	Subjects  []string `json:"subjects,omitempty"`
	Credits   float64  `json:"credits,omitempty"`
	Extension string   `json:"extension,omitempty"`
}

// TranscriptDraft is the persisted-activity preview shown on the
// TranscriptCard before the entry is committed.
type TranscriptDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
	Credits     float64  `json:"credits"`
	RuleKey     string   `json:"rule_key,omitempty"`
	Source      string   `json:"source"`
}

// InvestigationSource is one retrieved document reference carried in state
// for citation and the InvestigationBoard payload.
type InvestigationSource struct {
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	SourceType string `json:"source_type"`
}

// MissionBriefingDraft is the fixed three-step project scaffold composed by
// the brainstorm node.
type MissionBriefingDraft struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

// ReflectionMarker records an outstanding Socratic prompt. While present,
// the next message is scored against it regardless of its nominal intent.
type ReflectionMarker struct {
	Dimension           string     `json:"dimension"`
	Prompt              string     `json:"prompt"`
	ActivityDescription string     `json:"activity_description"`
	ConceptID           *uuid.UUID `json:"concept_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// UIPayload is the structured companion to the text response.
type UIPayload struct {
	Kind string         `json:"kind"`
	Data map[string]any `json:"data,omitempty"`
}

// UIPayload kinds, in planner priority order.
const (
	UITranscriptCard     = "TranscriptCard"
	UIInvestigationBoard = "InvestigationBoard"
	UIProjectImpactCard  = "ProjectImpactCard"
	UIMissionBriefing    = "MissionBriefing"
	UITimeline           = "Timeline"
	UIConceptMap         = "ConceptMap"
)

// PipelineState is the transient per-request state threaded through the
// executor. Stages receive it by value and return the next value; a failed
// stage's partial writes are discarded.
type PipelineState struct {
	UserID    uuid.UUID     `json:"user_id"`
	GradeBand string        `json:"grade_band,omitempty"`
	Interests []string      `json:"interests,omitempty"`
	Prompt    string        `json:"prompt"`
	History   []ChatMessage `json:"history,omitempty"`

	// Attached media, at most one kind per message. Images arrive either
	// by URL or as raw bytes.
	ImageURL   string `json:"image_url,omitempty"`
	ImageBytes []byte `json:"-"`
	AudioBytes []byte `json:"-"`
	AudioMIME  string `json:"audio_mime,omitempty"`

	Intent  Intent       `json:"intent,omitempty"`
	Profile ModelProfile `json:"profile,omitempty"`

	CreditMapping    *CreditMapping        `json:"credit_mapping,omitempty"`
	TranscriptDraft  *TranscriptDraft      `json:"transcript_draft,omitempty"`
	Sources          []InvestigationSource `json:"sources,omitempty"`
	InvestigationRan bool                  `json:"investigation_ran,omitempty"`
	MissionBriefing  *MissionBriefingDraft `json:"mission_briefing,omitempty"`

	PendingReflection *ReflectionMarker `json:"pending_reflection,omitempty"`
	ReflectionScore   *float64          `json:"reflection_score,omitempty"`

	// MediaFailed is set when a pre-processor could not understand the
	// attachment; the chained activity node is skipped.
	MediaFailed bool `json:"media_failed,omitempty"`

	ResponseText string     `json:"response_text,omitempty"`
	UI           *UIPayload `json:"ui,omitempty"`

	OpenGaps []string `json:"open_gaps,omitempty"`
	GapNudge string   `json:"gap_nudge,omitempty"`

	Stages []StageResult `json:"stages"`
}
