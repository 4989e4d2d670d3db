package controllers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createOrder(t *testing.T, api *testAPI, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	rec := api.do(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func orderBody(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"orderItems": items,
		"address1":   "1 Main St",
		"phone":      "555-0100",
		"status":     "pending",
		"user":       primitive.NewObjectID().Hex(),
	}
}

func TestListOrdersEmptyArray(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCreateOrderReturnsComputedTotal(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	b := api.addProduct("B", 5)

	body := createOrder(t, api, orderBody(
		map[string]interface{}{"product": a.ID.Hex(), "quantity": 2},
		map[string]interface{}{"product": b.ID.Hex(), "quantity": 1},
	))

	assert.Equal(t, 25.0, body["totalPrice"])
	assert.Equal(t, "pending", body["status"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateOrderValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/orders", map[string]interface{}{
		"orderItems": []interface{}{},
		"phone":      "555-0100",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])

	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, "errors must be a field map")
	assert.Contains(t, errs, "orderItems")
	assert.Contains(t, errs, "address1")
	assert.Contains(t, errs, "user")
}

func TestCreateOrderSaveFailure(t *testing.T) {
	api := newTestAPI(t)
	api.orders.failInsert = true
	a := api.addProduct("A", 10)

	rec := api.do(t, http.MethodPost, "/orders", orderBody(
		map[string]interface{}{"product": a.ID.Hex(), "quantity": 1},
	))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The order cannot be created!", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestGetOrderNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/orders/"+primitive.NewObjectID().Hex(), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestGetOrderMalformedID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/orders/not-a-hex-id", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	created := createOrder(t, api, orderBody(
		map[string]interface{}{"product": a.ID.Hex(), "quantity": 1},
	))

	rec := api.do(t, http.MethodPut, "/orders/"+created["id"].(string), map[string]interface{}{
		"status": "shipped",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shipped", decodeBody(t, rec)["status"])
}

func TestUpdateOrderNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPut, "/orders/"+primitive.NewObjectID().Hex(), map[string]interface{}{
		"status": "shipped",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The order cannot be updated!", rec.Body.String())
}

func TestDeleteOrderCascade(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	created := createOrder(t, api, orderBody(
		map[string]interface{}{"product": a.ID.Hex(), "quantity": 2},
	))

	rec := api.do(t, http.MethodDelete, "/orders/"+created["id"].(string), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "The order is deleted!", body["message"])

	api.items.mu.Lock()
	remaining := len(api.items.data)
	api.items.mu.Unlock()
	assert.Zero(t, remaining)
}

func TestDeleteOrderNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodDelete, "/orders/"+primitive.NewObjectID().Hex(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order not found!", body["message"])
}

func TestTotalSalesEmpty(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/orders/get/totalsales", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The order sales cannot be generated", rec.Body.String())
}

func TestTotalSales(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	createOrder(t, api, orderBody(map[string]interface{}{"product": a.ID.Hex(), "quantity": 2}))
	createOrder(t, api, orderBody(map[string]interface{}{"product": a.ID.Hex(), "quantity": 3}))

	rec := api.do(t, http.MethodGet, "/orders/get/totalsales", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, decodeBody(t, rec)["totalsales"])
}

func TestOrderCountZeroIsFailure(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/orders/get/count", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestOrderCount(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	createOrder(t, api, orderBody(map[string]interface{}{"product": a.ID.Hex(), "quantity": 1}))

	rec := api.do(t, http.MethodGet, "/orders/get/count", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["orderCount"])
}

func TestUserOrders(t *testing.T) {
	api := newTestAPI(t)
	a := api.addProduct("A", 10)
	userID := primitive.NewObjectID()

	body := orderBody(map[string]interface{}{"product": a.ID.Hex(), "quantity": 1})
	body["user"] = userID.Hex()
	createOrder(t, api, body)
	// an order for someone else
	createOrder(t, api, orderBody(map[string]interface{}{"product": a.ID.Hex(), "quantity": 1}))

	rec := api.do(t, http.MethodGet, "/orders/get/userorders/"+userID.Hex(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
