package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

type AssessmentHandler struct {
	log         *zap.Logger
	assessments services.AssessmentService
}

func NewAssessmentHandler(log *zap.Logger, assessments services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{log: log, assessments: assessments}
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	assessment, err := h.assessments.GetAssessment(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (h *AssessmentHandler) Put(c *gin.Context) {
	var assessment models.Assessment
	if err := c.ShouldBindJSON(&assessment); err != nil {
		h.log.Debug("Failed to bind assessment", zap.Error(err))
		badRequest(c, "Invalid assessment payload: "+err.Error())
		return
	}

	saved, err := h.assessments.SaveAssessment(c.Request.Context(), c.Param("jobId"), assessment)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *AssessmentHandler) Preview(c *gin.Context) {
	var body struct {
		Answers models.AnswerSet `json:"answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid answers payload")
		return
	}

	preview, err := h.assessments.Preview(c.Request.Context(), c.Param("jobId"), body.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid submission payload")
		return
	}

	submission, err := h.assessments.Submit(c.Request.Context(), c.Param("jobId"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok", "submission": submission})
}

func (h *AssessmentHandler) Submissions(c *gin.Context) {
	submissions, err := h.assessments.ListSubmissions(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}
