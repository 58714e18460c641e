package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentorloop-backend/internal/logger"
	"github.com/yungbote/mentorloop-backend/internal/middleware"
	"github.com/yungbote/mentorloop-backend/internal/pipeline"
	"github.com/yungbote/mentorloop-backend/internal/repos"
	"github.com/yungbote/mentorloop-backend/internal/services"
	"github.com/yungbote/mentorloop-backend/internal/types"
)

// The chat surface never returns a bare error; a degraded sentence beats a
// 500 for a student mid-conversation.
const chatDegradedResponse = "I'm having trouble right now, but I'm still here — try asking me again in a moment."

type ChatHandler struct {
	log        *logger.Logger
	executor   *pipeline.Executor
	moderation services.ModerationService
	cache      services.SemanticCache
	users      repos.UserRepo
}

func NewChatHandler(log *logger.Logger, executor *pipeline.Executor, moderation services.ModerationService, cache services.SemanticCache, users repos.UserRepo) *ChatHandler {
	return &ChatHandler{
		log:        log.With("handler", "ChatHandler"),
		executor:   executor,
		moderation: moderation,
		cache:      cache,
		users:      users,
	}
}

type chatRequest struct {
	Message   string              `json:"message"`
	History   []types.ChatMessage `json:"history,omitempty"`
	ImageURL  string              `json:"image_url,omitempty"`
	ImageB64  string              `json:"image_b64,omitempty"`
	AudioB64  string              `json:"audio_b64,omitempty"`
	AudioMIME string              `json:"audio_mime,omitempty"`
	// A pending Socratic prompt carried over from the previous turn.
	PendingReflection *types.ReflectionMarker `json:"pending_reflection,omitempty"`
}

type chatResponse struct {
	Intent            types.Intent            `json:"intent"`
	ResponseText      string                  `json:"response_text"`
	UI                *types.UIPayload        `json:"ui,omitempty"`
	Nudge             string                  `json:"nudge,omitempty"`
	PendingReflection *types.ReflectionMarker `json:"pending_reflection,omitempty"`
	Stages            []types.StageResult     `json:"stages"`
	Cached            bool                    `json:"cached,omitempty"`
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	hasMedia := req.ImageURL != "" || req.ImageB64 != "" || req.AudioB64 != ""
	if strings.TrimSpace(req.Message) == "" && !hasMedia {
		RespondError(c, http.StatusBadRequest, "empty_message", nil)
		return
	}

	ctx := c.Request.Context()

	// Pipeline input is sanitized before anything else sees it.
	message, _ := h.moderation.MaskPII(req.Message)
	if blocked, refusal := h.moderation.Moderate(message); blocked {
		RespondOK(c, chatResponse{
			Intent:       types.IntentChat,
			ResponseText: refusal,
		})
		return
	}

	// A pending reflection must reach the scoring node; a cache hit here
	// would drop the marker.
	cacheable := h.cache != nil && !hasMedia && req.PendingReflection == nil
	if cacheable {
		if answer, hit, _ := h.cache.Lookup(ctx, userID, message); hit {
			RespondOK(c, chatResponse{
				Intent:       types.IntentChat,
				ResponseText: answer,
				Cached:       true,
			})
			return
		}
	}

	st := types.PipelineState{
		UserID:            userID,
		Prompt:            message,
		History:           req.History,
		ImageURL:          req.ImageURL,
		AudioMIME:         req.AudioMIME,
		PendingReflection: req.PendingReflection,
	}
	if req.ImageB64 != "" {
		if raw, err := base64.StdEncoding.DecodeString(req.ImageB64); err == nil {
			st.ImageBytes = raw
		}
	}
	if req.AudioB64 != "" {
		if raw, err := base64.StdEncoding.DecodeString(req.AudioB64); err == nil {
			st.AudioBytes = raw
		}
	}

	if user, err := h.users.GetByID(ctx, nil, userID); err == nil && user != nil {
		st.GradeBand = user.GradeBand
		if len(user.Interests) > 0 {
			_ = json.Unmarshal(user.Interests, &st.Interests)
		}
	} else {
		h.log.Warn("User lookup failed, running without grade context", "user_id", userID, "error", err)
	}

	final := h.executor.Run(ctx, st)

	responseText := strings.TrimSpace(final.ResponseText)
	degraded := responseText == ""
	if degraded {
		responseText = chatDegradedResponse
	}

	if cacheable && !degraded {
		_ = h.cache.Store(ctx, userID, message, responseText)
	}

	RespondOK(c, chatResponse{
		Intent:            final.Intent,
		ResponseText:      responseText,
		UI:                final.UI,
		Nudge:             final.GapNudge,
		PendingReflection: final.PendingReflection,
		Stages:            final.Stages,
	})
}
