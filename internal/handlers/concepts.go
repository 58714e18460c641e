package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentorloop-backend/internal/services"
)

type ConceptsHandler struct {
	concepts services.ConceptService
}

func NewConceptsHandler(concepts services.ConceptService) *ConceptsHandler {
	return &ConceptsHandler{concepts: concepts}
}

// GET /api/concepts?subject=
func (h *ConceptsHandler) List(c *gin.Context) {
	out, err := h.concepts.ListConcepts(c.Request.Context(), c.Query("subject"))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "concepts_failed", err)
		return
	}
	RespondOK(c, gin.H{"concepts": out})
}

type createConceptRequest struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// POST /api/concepts
func (h *ConceptsHandler) Create(c *gin.Context) {
	var req createConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	concept, err := h.concepts.CreateConcept(c.Request.Context(), req.Name, req.Subject, req.Description)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_concept_failed", err)
		return
	}
	RespondOK(c, gin.H{"concept": concept})
}

type addPrereqRequest struct {
	PrerequisiteID uuid.UUID `json:"prerequisite_id"`
}

// POST /api/concepts/:id/prereqs
func (h *ConceptsHandler) AddPrerequisite(c *gin.Context) {
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_concept_id", err)
		return
	}

	var req addPrereqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	if err := h.concepts.AddPrerequisite(c.Request.Context(), conceptID, req.PrerequisiteID); err != nil {
		RespondError(c, http.StatusBadRequest, "add_prerequisite_failed", err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
