package pantry

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	fulfillment *FulfillmentService
	store       Store
}

func NewHandler(fulfillment *FulfillmentService, store Store) *Handler {
	return &Handler{fulfillment: fulfillment, store: store}
}

type orderRequest struct {
	PartnerID      string      `json:"partner_id"`
	ShoppingList   []OrderLine `json:"shopping_list"`
	IdempotencyKey string      `json:"idempotency_key"`
}

// --------------------------------------------------
// POST /orders
// --------------------------------------------------
func (h *Handler) CreateOrder(c *gin.Context) {
	householdID := c.GetString("householdID")
	if householdID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = c.GetHeader("Idempotency-Key")
	}
	if len(key) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
		return
	}

	receipt, err := h.fulfillment.Fulfill(c.Request.Context(), FulfillRequest{
		HouseholdID:    householdID,
		ActorID:        c.GetString("userID"),
		PartnerID:      req.PartnerID,
		IdempotencyKey: key,
		Items:          req.ShoppingList,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrEmptyOrder.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrPersistence.Error()})
		return
	}

	status := http.StatusCreated
	if receipt.Replayed {
		c.Header("Idempotent-Replayed", "true")
		status = http.StatusOK
	}
	c.JSON(status, receipt)
}

// --------------------------------------------------
// GET /pantry
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	householdID := c.GetString("householdID")
	if householdID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.store.List(c.Request.Context(), householdID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load pantry"})
		return
	}
	if items == nil {
		items = []Item{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
