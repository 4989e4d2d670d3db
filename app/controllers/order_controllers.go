// Package controllers maps HTTP requests onto the service layer and
// renders the API's wire formats.
package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/app/models"
	"eshop/app/services"
	"eshop/pkg/bind"
	"eshop/pkg/logger"
	"eshop/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// List handles GET /orders.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.List(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list orders", "error", err)
		response.ServerError(w, err)
		return
	}
	response.OK(w, orders)
}

// Get handles GET /orders/{id}.
func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	order, err := c.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// The read paths do not distinguish an absent record from a
			// backend failure; both surface as a 500.
			response.Failure(w, http.StatusInternalServerError, "")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.OK(w, order)
}

// Create handles POST /orders.
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  errs,
		})
		return
	}

	order, err := c.service.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrSaveFailed) {
			response.Text(w, http.StatusBadRequest, "The order cannot be created!")
			return
		}
		logger.WithCtx(r.Context()).Error("create order", "error", err)
		response.ServerError(w, err)
		return
	}
	response.OK(w, order)
}

// Update handles PUT /orders/{id}. Only status is mutable.
func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if _, err := bind.JSON(r, &in); err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Text(w, http.StatusBadRequest, "The order cannot be updated!")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.OK(w, order)
}

// Delete handles DELETE /orders/{id}, cascading to the order's items.
func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Failure(w, http.StatusNotFound, "Order not found!")
			return
		}
		logger.WithCtx(r.Context()).Error("delete order", "error", err)
		response.ServerError(w, err)
		return
	}
	response.Deleted(w, "The order is deleted!")
}

// TotalSales handles GET /orders/get/totalsales.
func (c *OrderController) TotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := c.service.TotalSales(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoSales) {
			response.Text(w, http.StatusBadRequest, "The order sales cannot be generated")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.OK(w, map[string]float64{"totalsales": total})
}

// Count handles GET /orders/get/count. A zero count is reported as a
// failure, indistinguishable from a backend error; see the service
// tests for why this contract is kept.
func (c *OrderController) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.Count(r.Context())
	if err != nil {
		response.ServerError(w, err)
		return
	}
	if count == 0 {
		response.Failure(w, http.StatusInternalServerError, "")
		return
	}
	response.OK(w, map[string]int64{"orderCount": count})
}

// ListByUser handles GET /orders/get/userorders/{userid}.
func (c *OrderController) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userid"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	orders, err := c.service.ListByUser(r.Context(), userID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("list user orders", "error", err)
		response.ServerError(w, err)
		return
	}
	response.OK(w, orders)
}
