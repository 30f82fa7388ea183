package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/paginator"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

type JobHandler struct {
	log  *zap.Logger
	jobs services.JobService
}

func NewJobHandler(log *zap.Logger, jobs services.JobService) *JobHandler {
	return &JobHandler{log: log, jobs: jobs}
}

type reorderRequest struct {
	FromOrder *int `json:"fromOrder"`
	ToOrder   *int `json:"toOrder"`
}

func (h *JobHandler) List(c *gin.Context) {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize", paginator.DefaultLimit)
	if !ok {
		return
	}

	result, err := h.jobs.ListJobs(c.Request.Context(), services.JobFilter{
		Search:   c.Query("search"),
		Status:   models.JobStatus(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Create(c *gin.Context) {
	var input services.JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Debug("Failed to bind job", zap.Error(err))
		badRequest(c, "Invalid job payload")
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	var patch services.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Debug("Failed to bind job update", zap.Error(err))
		badRequest(c, "Invalid job payload")
		return
	}

	job, err := h.jobs.UpdateJob(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Reorder commits a move of the job list. The path id names the dragged job
// but the move itself is described by the two positions.
func (h *JobHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FromOrder == nil || req.ToOrder == nil {
		badRequest(c, "fromOrder and toOrder are required")
		return
	}

	jobs, err := h.jobs.Reorder(c.Request.Context(), *req.FromOrder, *req.ToOrder)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "jobs": jobs})
}
