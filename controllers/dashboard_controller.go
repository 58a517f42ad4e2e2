package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
)

// GetCookDashboard handles GET /api/v1/dashboard/cook
func GetCookDashboard(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	dashboard, err := services.NewDashboards(newStore(), currentPolicy()).Cook(c.Request.Context(), principal.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resolvePhotoURLs(c.Request.Context(), dashboard.Dishes)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dashboard,
	})
}

// GetDeliveryDashboard handles GET /api/v1/dashboard/delivery
func GetDeliveryDashboard(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	dashboard, err := services.NewDashboards(newStore(), currentPolicy()).Delivery(c.Request.Context(), principal.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dashboard,
	})
}

// GetMyStats handles GET /api/v1/stats/me - the statistics of the caller's role
func GetMyStats(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	stats, err := services.NewDashboards(newStore(), currentPolicy()).Stats(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// GetMyGamification handles GET /api/v1/gamification/me - points, level and badges of the caller
// A user with no record yet sees the initial state
func GetMyGamification(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	record, err := newStore().FetchGamification(c.Request.Context(), principal.ID)
	if errors.Is(err, services.ErrNotFound) {
		initial := models.NewGamification(principal.ID)
		record, err = &initial, nil
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	policy := currentPolicy()
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"data":              record,
		"next_level_points": record.Level * policy.PointsPerLevel,
	})
}
