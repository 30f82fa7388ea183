package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

type TimelineHandler struct {
	log      *zap.Logger
	timeline services.TimelineService
}

func NewTimelineHandler(log *zap.Logger, timeline services.TimelineService) *TimelineHandler {
	return &TimelineHandler{log: log, timeline: timeline}
}

func (h *TimelineHandler) List(c *gin.Context) {
	events, err := h.timeline.ListEvents(c.Request.Context(), c.Query("candidateId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *TimelineHandler) Append(c *gin.Context) {
	var input services.TimelineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid timeline payload")
		return
	}

	event, err := h.timeline.AppendEvent(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}
