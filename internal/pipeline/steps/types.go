// Package steps holds the agent nodes: one processing stage per intent, each
// with the signature (ctx, deps, state) -> (state', error). Nodes are impure
// (generation calls, mastery writes) but never panic past their boundary;
// the executor owns containment.
package steps

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentorloop-backend/internal/config"
	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/services"
)

type Deps struct {
	DB  *gorm.DB
	Log *logger.Logger

	AI     services.AIClient
	Docs   services.DocumentSearch
	Speech services.SpeechProvider
	Vision services.VisionProvider

	Mastery services.MasteryService
	Rules   *config.Rules

	Concepts      repos.ConceptRepo
	Transcripts   repos.TranscriptEntryRepo
	Gaps          repos.LearningGapRepo
	Opportunities repos.OpportunityRepo
}
