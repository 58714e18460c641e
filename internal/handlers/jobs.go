package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentorloop-backend/internal/jobs"
	"github.com/yungbote/mentorloop-backend/internal/middleware"
	"github.com/yungbote/mentorloop-backend/internal/services"
)

type JobsHandler struct {
	jobs       jobs.Service
	moderation services.ModerationService
}

func NewJobsHandler(svc jobs.Service, moderation services.ModerationService) *JobsHandler {
	return &JobsHandler{jobs: svc, moderation: moderation}
}

type submitJobRequest struct {
	Prompt string `json:"prompt"`
}

// POST /api/jobs
func (h *JobsHandler) Submit(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	prompt, _ := h.moderation.MaskPII(req.Prompt)
	job, err := h.jobs.Submit(c.Request.Context(), userID, prompt)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "submit_failed", err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs/:id
func (h *JobsHandler) GetByID(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	if job == nil || job.UserID != userID {
		RespondError(c, http.StatusNotFound, "job_not_found", fmt.Errorf("job %s not found", jobID))
		return
	}
	RespondOK(c, gin.H{"job": job})
}

type processJobsRequest struct {
	BatchSize int `json:"batch_size"`
}

// POST /api/jobs/process
func (h *JobsHandler) ProcessPending(c *gin.Context) {
	var req processJobsRequest
	_ = c.ShouldBindJSON(&req)

	// Claimed jobs must finish even if the caller disconnects; a canceled
	// request context would strand them in processing.
	n, err := h.jobs.ProcessPending(context.WithoutCancel(c.Request.Context()), req.BatchSize)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "process_failed", err)
		return
	}
	RespondOK(c, gin.H{"claimed": n})
}
