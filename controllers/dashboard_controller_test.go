package controllers

import (
	"net/http"
	"testing"

	"github.com/hometaste/hometaste-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCookDashboard(t *testing.T) {
	f := setupOrderFixture(t)

	for _, tc := range []struct {
		status models.OrderStatus
		total  string
	}{
		{models.StatusPending, "25.50"},
		{models.StatusPreparing, "25.50"},
		{models.StatusDelivered, "20.00"},
		{models.StatusDelivered, "30.00"},
		{models.StatusDelivered, "50.00"},
		{models.StatusCancelled, "99.00"},
	} {
		order := createOrder(t, f.db, f.customer, f.stew, tc.status, models.DeliveryTypeEatIn)
		require.NoError(t, f.db.Model(&order).Update("total_price", decimal.RequireFromString(tc.total)).Error)
	}
	for i, rating := range []int{5, 4, 3} {
		review := models.Review{OrderID: uint(i + 1), ReviewerID: f.customer.ID, ReviewedID: f.cook.ID, Rating: rating}
		require.NoError(t, f.db.Create(&review).Error)
	}

	router := setupTestRouter()
	router.GET("/dashboard/cook", withHandlers(asUser(f.cook.Auth0ID, models.RoleCook), GetCookDashboard)...)

	w, response := doJSON(t, router, http.MethodGet, "/dashboard/cook", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := response["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, "cook", stats["role"])
	assert.Equal(t, float64(2), stats["total_dishes"])
	assert.Equal(t, float64(2), stats["active_orders"])
	assert.Equal(t, float64(6), stats["total_orders"])
	assertDecimal(t, "100", stats["total_earnings"])
	assert.InDelta(t, 4.0, stats["average_rating"], 0.0001)

	assert.Len(t, data["dishes"], 2)
	assert.Len(t, data["recent_orders"], 5)
}

func TestGetDeliveryDashboard(t *testing.T) {
	f := setupOrderFixture(t)

	assign := func(status models.OrderStatus, total string, courier *models.Profile) {
		order := createOrder(t, f.db, f.customer, f.stew, status, models.DeliveryTypeDelivery)
		updates := map[string]interface{}{"total_price": decimal.RequireFromString(total)}
		if courier != nil {
			updates["delivery_id"] = courier.ID
		}
		require.NoError(t, f.db.Model(&order).Updates(updates).Error)
	}
	assign(models.StatusDelivered, "20.00", &f.courier)
	assign(models.StatusDelivered, "30.00", &f.courier)
	assign(models.StatusDelivered, "50.00", &f.courier)
	assign(models.StatusInDelivery, "40.00", &f.courier)
	assign(models.StatusReady, "15.00", nil)
	assign(models.StatusReady, "15.00", nil)

	router := setupTestRouter()
	router.GET("/dashboard/delivery", withHandlers(asUser(f.courier.Auth0ID, models.RoleDelivery), GetDeliveryDashboard)...)

	w, response := doJSON(t, router, http.MethodGet, "/dashboard/delivery", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := response["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total_deliveries"])
	assert.Equal(t, float64(1), stats["active_deliveries"])
	assertDecimal(t, "10.00", stats["total_earnings"])
	assert.Len(t, data["active_orders"], 1)
	assert.Len(t, data["available_orders"], 2)
}

func TestGetDeliveryDashboard_RequiresCourier(t *testing.T) {
	f := setupOrderFixture(t)

	router := setupTestRouter()
	router.GET("/dashboard/delivery", withHandlers(asUser(f.cook.Auth0ID, models.RoleDelivery), GetDeliveryDashboard)...)

	w, response := doJSON(t, router, http.MethodGet, "/dashboard/delivery", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))
}

func TestGetMyStats(t *testing.T) {
	f := setupOrderFixture(t)
	for _, total := range []string{"10.00", "15.50"} {
		order := createOrder(t, f.db, f.customer, f.cake, models.StatusDelivered, models.DeliveryTypeEatIn)
		require.NoError(t, f.db.Model(&order).Update("total_price", decimal.RequireFromString(total)).Error)
	}
	createOrder(t, f.db, f.customer, f.cake, models.StatusPending, models.DeliveryTypeEatIn)

	router := setupTestRouter()
	router.GET("/stats/me", mockAuthMiddleware(f.customer.Auth0ID, "customer", "token"), GetMyStats)

	w, response := doJSON(t, router, http.MethodGet, "/stats/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stats := response["data"].(map[string]interface{})
	assert.Equal(t, "customer", stats["role"])
	assert.Equal(t, float64(3), stats["total_orders"])
	assert.Equal(t, float64(1), stats["active_orders"])
	assertDecimal(t, "25.50", stats["total_spent"])
}

func TestGetMyGamification(t *testing.T) {
	f := setupOrderFixture(t)
	require.NoError(t, f.db.Model(&models.Gamification{}).
		Where("user_id = ?", f.cook.ID).
		Updates(map[string]interface{}{"points": 250, "level": 3}).Error)

	// A profile created before gamification existed has no record
	legacy := models.Profile{Auth0ID: "auth0|legacy", FullName: "Legacy", Email: "legacy@hometaste.test", Role: models.RoleCustomer}
	require.NoError(t, f.db.Create(&legacy).Error)

	tests := []struct {
		name           string
		profile        models.Profile
		expectedPoints float64
		expectedLevel  float64
		expectedNext   float64
	}{
		{name: "Existing record", profile: f.cook, expectedPoints: 250, expectedLevel: 3, expectedNext: 300},
		{name: "Initial state", profile: legacy, expectedPoints: 0, expectedLevel: 1, expectedNext: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/gamification/me", mockAuthMiddleware(tt.profile.Auth0ID, string(tt.profile.Role), "token"), GetMyGamification)

			w, response := doJSON(t, router, http.MethodGet, "/gamification/me", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.expectedPoints, data["points"])
			assert.Equal(t, tt.expectedLevel, data["level"])
			assert.Equal(t, tt.expectedNext, response["next_level_points"])
		})
	}
}
