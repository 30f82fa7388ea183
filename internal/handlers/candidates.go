package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

type CandidateHandler struct {
	log        *zap.Logger
	candidates services.CandidateService
}

func NewCandidateHandler(log *zap.Logger, candidates services.CandidateService) *CandidateHandler {
	return &CandidateHandler{log: log, candidates: candidates}
}

func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidates.ListCandidates(c.Request.Context(), services.CandidateFilter{
		JobID:  c.Query("jobId"),
		Search: c.Query("search"),
		Stage:  models.Stage(c.Query("stage")),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (h *CandidateHandler) Board(c *gin.Context) {
	board, err := h.candidates.Board(c.Request.Context(), c.Query("jobId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidates.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) Create(c *gin.Context) {
	var input services.CandidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Debug("Failed to bind candidate", zap.Error(err))
		badRequest(c, "Invalid candidate payload")
		return
	}

	candidate, err := h.candidates.CreateCandidate(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandler) UpdateStage(c *gin.Context) {
	var body struct {
		Stage models.Stage `json:"stage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid stage payload")
		return
	}

	candidate, err := h.candidates.UpdateStage(c.Request.Context(), c.Param("id"), body.Stage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) AddNote(c *gin.Context) {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid note payload")
		return
	}

	candidate, err := h.candidates.AddNote(c.Request.Context(), c.Param("id"), body.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}
