package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/handlers"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

// Services bundles everything the API serves.
type Services struct {
	Jobs        services.JobService
	Candidates  services.CandidateService
	Timeline    services.TimelineService
	Assessments services.AssessmentService
}

func Setup(log *zap.Logger, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	jobHandler := handlers.NewJobHandler(log, svc.Jobs)
	candidateHandler := handlers.NewCandidateHandler(log, svc.Candidates)
	timelineHandler := handlers.NewTimelineHandler(log, svc.Timeline)
	assessmentHandler := handlers.NewAssessmentHandler(log, svc.Assessments)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		jobs := api.Group("/jobs")
		{
			jobs.GET("", jobHandler.List)
			jobs.POST("", jobHandler.Create)
			jobs.GET("/:id", jobHandler.Get)
			// both verbs apply a partial update
			jobs.PUT("/:id", jobHandler.Update)
			jobs.PATCH("/:id", jobHandler.Update)
			jobs.PATCH("/:id/reorder", jobHandler.Reorder)
		}

		candidates := api.Group("/candidates")
		{
			candidates.GET("", candidateHandler.List)
			candidates.POST("", candidateHandler.Create)
			candidates.GET("/board", candidateHandler.Board)
			candidates.GET("/:id", candidateHandler.Get)
			candidates.PATCH("/:id/stage", candidateHandler.UpdateStage)
			candidates.POST("/:id/notes", candidateHandler.AddNote)
		}

		timeline := api.Group("/timeline")
		{
			timeline.GET("", timelineHandler.List)
			timeline.POST("", timelineHandler.Append)
		}

		assessments := api.Group("/assessments")
		{
			assessments.GET("/:jobId", assessmentHandler.Get)
			assessments.PUT("/:jobId", assessmentHandler.Put)
			assessments.POST("/:jobId/preview", assessmentHandler.Preview)
			assessments.POST("/:jobId/submit", assessmentHandler.Submit)
			assessments.GET("/:jobId/submissions", assessmentHandler.Submissions)
		}
	}

	return router
}
