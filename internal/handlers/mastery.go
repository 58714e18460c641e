package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentorloop-backend/internal/middleware"
	"github.com/yungbote/mentorloop-backend/internal/services"
)

type MasteryHandler struct {
	mastery services.MasteryService
}

func NewMasteryHandler(mastery services.MasteryService) *MasteryHandler {
	return &MasteryHandler{mastery: mastery}
}

// GET /api/reviews/due?limit=&subject=
func (h *MasteryHandler) GetDueReviews(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit := queryInt(c, "limit", 20)
	due, err := h.mastery.GetDueReviews(c.Request.Context(), userID, limit, c.Query("subject"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "due_reviews_failed", err)
		return
	}
	RespondOK(c, gin.H{"reviews": due})
}

type recordReviewRequest struct {
	ConceptID uuid.UUID `json:"concept_id"`
	Quality   float64   `json:"quality"`
}

// POST /api/reviews
func (h *MasteryHandler) RecordReview(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req recordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	outcome, err := h.mastery.RecordReview(c.Request.Context(), userID, req.ConceptID, req.Quality)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "record_review_failed", err)
		return
	}
	RespondOK(c, gin.H{"review": outcome})
}

// GET /api/zpd?limit=&subject=
func (h *MasteryHandler) GetZPD(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit := queryInt(c, "limit", 10)
	items, err := h.mastery.SelectZPD(c.Request.Context(), userID, limit, c.Query("subject"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "zpd_failed", err)
		return
	}
	RespondOK(c, gin.H{"concepts": items})
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return defaultVal
	}
	return parsed
}
