package pantry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/categorize"
)

func newTestRouter(t *testing.T, store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandler(newService(t, store, categorize.Keywords{}), store)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("householdID", "h1")
		c.Set("userID", "u1")
	})
	r.POST("/orders", h.CreateOrder)
	r.GET("/pantry", h.List)
	return r
}

func post(r http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const orderBody = `{
	"partner_id": "instacart",
	"shopping_list": [
		{"id": "a", "name": "Milk", "quantity": "2 l", "needed": true, "inPantry": false},
		{"id": "b", "name": "Eggs", "quantity": "12", "needed": false, "inPantry": true}
	]
}`

func TestCreateOrder(t *testing.T) {
	r := newTestRouter(t, NewInMemoryStore())

	w := post(r, orderBody, map[string]string{"Idempotency-Key": "k-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "instacart", created["partnerId"])
	assert.Equal(t, float64(1), created["itemsAdded"])
	assert.NotEmpty(t, created["orderId"])

	w = post(r, orderBody, map[string]string{"Idempotency-Key": "k-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))

	var replayed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replayed))
	assert.Equal(t, created["orderId"], replayed["orderId"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pantry", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Items []Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Items, 1)
	assert.Equal(t, "Milk", listed.Items[0].Name)
	assert.Equal(t, "2", listed.Items[0].Quantity.String())
}

func TestCreateOrderErrors(t *testing.T) {
	store := NewInMemoryStore()
	r := newTestRouter(t, store)

	w := post(r, `{"partner_id":"p","shopping_list":[{"name":"Milk","quantity":"1","needed":false}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no items selected")

	w = post(r, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	broken := newTestRouter(t, &faultyStore{Store: store, failOn: 1})
	w = post(broken, orderBody, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"could not complete order"}`, w.Body.String())
}

func TestHandlersRequireHousehold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewInMemoryStore()
	h := NewHandler(newService(t, store, nil), store)

	r := gin.New()
	r.POST("/orders", h.CreateOrder)

	w := post(r, orderBody, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
