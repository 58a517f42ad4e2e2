package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"github.com/shopspring/decimal"
)

// CreateDishRequest represents the form fields for publishing a dish.
// The photo is sent as the optional "image" file part.
type CreateDishRequest struct {
	Name         string `form:"name" json:"name" binding:"required"`
	Description  string `form:"description" json:"description"`
	Price        string `form:"price" json:"price" binding:"required"`
	Category     string `form:"category" json:"category" binding:"required"`
	AcceptsEatIn bool   `form:"accepts_eat_in" json:"accepts_eat_in"`
}

// CreateDish handles POST /api/v1/dishes - publishes a dish (cooks only)
// Accepts multipart/form-data with an optional PNG photo
func CreateDish(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req CreateDishRequest
	if err := c.ShouldBind(&req); err != nil {
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

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || !price.IsPositive() {
		respondError(c, http.StatusBadRequest, "INVALID_PRICE", "Price must be a positive amount")
		return
	}

	dish := models.Dish{
		CookID:       principal.ID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        price.Round(2),
		Category:     strings.TrimSpace(req.Category),
		AcceptsEatIn: req.AcceptsEatIn,
		IsActive:     true,
	}

	// Photo is optional
	fileHeader, err := c.FormFile("image")
	if err == nil && fileHeader != nil {
		images := services.GetImageService()
		if images == nil {
			respondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Image storage is not configured")
			return
		}
		key, err := images.UploadImage(c.Request.Context(), fileHeader)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		dish.PhotoKey = &key
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&dish).Error; err != nil {
		if dish.PhotoKey != nil {
			discardPhoto(c.Request.Context(), *dish.PhotoKey)
		}
		respondServiceError(c, services.ClassifyStoreError(err, "dish"))
		return
	}

	dishes := []models.Dish{dish}
	resolvePhotoURLs(c.Request.Context(), dishes)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dishes[0],
	})
}

// ListMyDishes handles GET /api/v1/dishes/mine - lists the calling cook's dishes
func ListMyDishes(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	dishes, err := newStore().FetchDishesByCook(c.Request.Context(), principal.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resolvePhotoURLs(c.Request.Context(), dishes)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dishes,
		"count":   len(dishes),
	})
}

// GetFeed handles GET /api/v1/feed - active dishes filtered by ?search= and ?category=
func GetFeed(c *gin.Context) {
	dishes, err := newStore().FetchActiveDishes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filtered := services.FilterDishes(dishes, c.Query("search"), c.Query("category"))
	resolvePhotoURLs(c.Request.Context(), filtered)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    filtered,
		"count":   len(filtered),
	})
}

// GetFeedCategories handles GET /api/v1/feed/categories - categories of the active dishes
func GetFeedCategories(c *gin.Context) {
	dishes, err := newStore().FetchActiveDishes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    services.DishCategories(dishes),
	})
}

func discardPhoto(ctx context.Context, key string) {
	images := services.GetImageService()
	if images == nil {
		return
	}
	if err := images.DeleteImage(ctx, key); err != nil {
		log.Printf("Failed to delete orphaned photo %s: %v", key, err)
	}
}
