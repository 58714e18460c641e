package services

import (
	"regexp"
	"strings"

	"github.com/yungbote/mentorloop-backend/internal/logger"
)

// ModerationService screens learner messages before they reach the pipeline:
// contact details are masked so they never land in logs, prompts, or the
// transcript record.
type ModerationService interface {
	// MaskPII replaces emails and phone numbers with placeholders and
	// reports whether anything was masked.
	MaskPII(message string) (string, bool)
	// Moderate reports whether the message must be refused outright and, if
	// so, the refusal text to answer with. Refusal is a response, never an
	// error.
	Moderate(message string) (bool, string)
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,2}[\s.\-]?)?(\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}`)
)

// blockedPhrases is a deliberately small last-line screen; upstream model
// safety handles nuance.
var blockedPhrases = []string{
	"how to make a bomb",
	"how to make a weapon",
	"kill myself",
	"hurt myself",
	"buy a gun",
}

const moderationRefusal = "I can't help with that. If you're going through something hard, please talk to a trusted adult — I'm here for your learning questions."

type moderationService struct {
	log *logger.Logger
}

func NewModerationService(baseLog *logger.Logger) ModerationService {
	return &moderationService{log: baseLog.With("service", "ModerationService")}
}

func (s *moderationService) MaskPII(message string) (string, bool) {
	if strings.TrimSpace(message) == "" {
		return message, false
	}
	masked := emailPattern.ReplaceAllString(message, "[email]")
	masked = phonePattern.ReplaceAllString(masked, "[phone]")
	if masked != message {
		s.log.Info("Masked contact details in message")
		return masked, true
	}
	return message, false
}

func (s *moderationService) Moderate(message string) (bool, string) {
	lower := strings.ToLower(message)
	for _, phrase := range blockedPhrases {
		if strings.Contains(lower, phrase) {
			s.log.Warn("Blocked message by moderation screen")
			return true, moderationRefusal
		}
	}
	return false, ""
}
