package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/mentorloop-backend/internal/handlers"
	"github.com/yungbote/mentorloop-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware

	ChatHandler     *handlers.ChatHandler
	JobsHandler     *handlers.JobsHandler
	MasteryHandler  *handlers.MasteryHandler
	ConceptsHandler *handlers.ConceptsHandler
	GapsHandler     *handlers.GapsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("mentorloop-backend"))
	r.Use(middleware.CORS())

	// Health
	r.GET("/healthcheck", handlers.HealthCheck)

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Chat (synchronous pipeline)
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Chat)
		}

		// Jobs (async pipeline)
		if cfg.JobsHandler != nil {
			protected.POST("/jobs", cfg.JobsHandler.Submit)
			protected.GET("/jobs/:id", cfg.JobsHandler.GetByID)
			protected.POST("/jobs/process", cfg.JobsHandler.ProcessPending)
		}

		// Spaced repetition
		if cfg.MasteryHandler != nil {
			protected.GET("/reviews/due", cfg.MasteryHandler.GetDueReviews)
			protected.POST("/reviews", cfg.MasteryHandler.RecordReview)
			protected.GET("/zpd", cfg.MasteryHandler.GetZPD)
		}

		// Concept graph
		if cfg.ConceptsHandler != nil {
			protected.GET("/concepts", cfg.ConceptsHandler.List)
			protected.POST("/concepts", cfg.ConceptsHandler.Create)
			protected.POST("/concepts/:id/prereqs", cfg.ConceptsHandler.AddPrerequisite)
		}

		// Learning gaps
		if cfg.GapsHandler != nil {
			protected.GET("/gaps", cfg.GapsHandler.List)
			protected.POST("/gaps/:id/addressed", cfg.GapsHandler.MarkAddressed)
		}
	}

	return r
}
