package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	DishID            uint                `json:"dish_id" binding:"required"`
	Quantity          int                 `json:"quantity" binding:"required,gt=0"`
	DeliveryType      models.DeliveryType `json:"delivery_type" binding:"required"`
	DeliveryAddressID *uint               `json:"delivery_address_id"`
	ScheduledTime     *time.Time          `json:"scheduled_time"`
}

// UpdateOrderStatusRequest represents the request body for moving an order along its lifecycle
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - orders a dish (customers only)
func CreateOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if !req.DeliveryType.Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_DELIVERY_TYPE", "Delivery type must be delivery or eat_in")
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())

	var dish models.Dish
	if err := db.First(&dish, req.DishID).Error; err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "dish"))
		return
	}
	if !dish.IsActive {
		respondError(c, http.StatusBadRequest, "DISH_UNAVAILABLE", "This dish is not available")
		return
	}

	order := models.Order{
		CustomerID:    principal.ID,
		CookID:        dish.CookID,
		DishID:        dish.ID,
		Quantity:      req.Quantity,
		TotalPrice:    dish.Price.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2),
		DeliveryType:  req.DeliveryType,
		Status:        models.StatusPending,
		ScheduledTime: req.ScheduledTime,
	}

	switch req.DeliveryType {
	case models.DeliveryTypeEatIn:
		if !dish.AcceptsEatIn {
			respondError(c, http.StatusBadRequest, "EAT_IN_NOT_ACCEPTED", "This dish cannot be eaten at the cook's place")
			return
		}
	case models.DeliveryTypeDelivery:
		if req.DeliveryAddressID == nil {
			respondError(c, http.StatusBadRequest, "ADDRESS_REQUIRED", "A delivery address is required")
			return
		}
		var address models.Address
		err := db.Where("id = ? AND user_id = ?", *req.DeliveryAddressID, principal.ID).First(&address).Error
		if err != nil {
			respondServiceError(c, services.ClassifyStoreError(err, "address"))
			return
		}
		order.DeliveryAddressID = &address.ID
	}

	if err := db.Create(&order).Error; err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "order"))
		return
	}
	order.Dish = &dish

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists the caller's orders, optionally ?status=a,b
// Customers see what they ordered, cooks what they were ordered, couriers what they carry
func ListOrders(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	statuses, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orders, err := newStore().FetchOrdersByRole(c.Request.Context(), principal.ID, principal.Role, statuses...)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// ListAvailableDeliveries handles GET /api/v1/orders/available - ready orders waiting for a courier
func ListAvailableDeliveries(c *gin.Context) {
	orders, err := newStore().FetchAvailableDeliveries(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id - gets one order with the statuses the caller may move it to
func GetOrder(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var order models.Order
	err := config.GetDB().WithContext(c.Request.Context()).
		Preload("Dish").
		Preload("DeliveryAddress").
		First(&order, orderID).Error
	if err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "order"))
		return
	}

	if !canViewOrder(order, principal) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"data":                order,
		"allowed_transitions": services.AllowedTransitions(order, principal),
	})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - moves an order along its lifecycle
func UpdateOrderStatus(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := newLifecycle().ApplyTransition(c.Request.Context(), orderID, principal, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// canViewOrder reports whether p takes part in the order, or is a courier looking at an order up for pickup
func canViewOrder(order models.Order, p services.Principal) bool {
	switch p.Role {
	case models.RoleCustomer:
		return order.CustomerID == p.ID
	case models.RoleCook:
		return order.CookID == p.ID
	case models.RoleDelivery:
		if order.DeliveryID != nil {
			return *order.DeliveryID == p.ID
		}
		return order.Status == models.StatusReady && order.DeliveryType == models.DeliveryTypeDelivery
	}
	return false
}

// parseStatusFilter parses a comma separated status list; an empty string means no filter
func parseStatusFilter(raw string) ([]models.OrderStatus, error) {
	statuses := []models.OrderStatus{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status := models.OrderStatus(part)
		if !status.Valid() {
			return nil, services.Validation("unknown order status " + part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
