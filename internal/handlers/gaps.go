package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentorloop-backend/internal/middleware"
	"github.com/yungbote/mentorloop-backend/internal/repos"
)

type GapsHandler struct {
	gaps repos.LearningGapRepo
}

func NewGapsHandler(gaps repos.LearningGapRepo) *GapsHandler {
	return &GapsHandler{gaps: gaps}
}

// GET /api/gaps?include_addressed=true
func (h *GapsHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	includeAddressed := c.Query("include_addressed") == "true"
	out, err := h.gaps.GetByUser(c.Request.Context(), nil, userID, includeAddressed)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gaps_failed", err)
		return
	}
	RespondOK(c, gin.H{"gaps": out})
}

// POST /api/gaps/:id/addressed
func (h *GapsHandler) MarkAddressed(c *gin.Context) {
	if _, ok := middleware.UserID(c); !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	gapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_gap_id", err)
		return
	}

	if err := h.gaps.MarkAddressed(c.Request.Context(), nil, gapID); err != nil {
		RespondError(c, http.StatusInternalServerError, "mark_addressed_failed", err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
