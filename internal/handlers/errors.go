package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/services"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

// respondError writes err as {"error": ...} with the status fault assigns it.
// Rejected submissions additionally carry their per-question messages.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Assessment has invalid answers",
			"errors":     verr.Messages,
			"violations": verr.Violations,
		})
		return
	}

	status := fault.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": fault.Message(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be a number")
		return 0, false
	}
	return n, true
}
