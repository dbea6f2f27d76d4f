package categorize

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	worker *Worker
}

func NewHandler(worker *Worker) *Handler {
	return &Handler{worker: worker}
}

// --------------------------------------------------
// POST /admin/pantry/recategorize
// --------------------------------------------------
func (h *Handler) Recategorize(c *gin.Context) {
	result, err := h.worker.ProcessBatch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recategorization failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
