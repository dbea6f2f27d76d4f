package shopping

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tandem/internal/meals"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// --------------------------------------------------
// GET /shopping-list?week=YYYY-MM-DD
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	householdID := c.GetString("householdID")
	if householdID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	week, err := meals.ParseWeek(c.Query("week"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week must be YYYY-MM-DD"})
		return
	}

	items, err := h.service.BuildList(c.Request.Context(), householdID, week)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": meals.FormatDate(week),
		"items":      items,
	})
}

type reconcileRequest struct {
	Week        string          `json:"week"`
	PreviousIDs []ItemID        `json:"previous_ids"`
	Overrides   map[string]bool `json:"overrides"`
}

// --------------------------------------------------
// POST /shopping-list/reconcile
// --------------------------------------------------
func (h *Handler) Reconcile(c *gin.Context) {
	householdID := c.GetString("householdID")
	if householdID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	week, err := meals.ParseWeek(req.Week, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week must be YYYY-MM-DD"})
		return
	}

	res, err := h.service.Reconcile(c.Request.Context(), householdID, week, req.PreviousIDs, req.Overrides)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": meals.FormatDate(week),
		"items":      res.Items,
		"overrides":  res.OptOuts.Map(),
		"ids":        res.IDs,
	})
}
