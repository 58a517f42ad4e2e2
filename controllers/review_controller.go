package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"gorm.io/gorm"
)

// Review targets
const (
	ReviewTargetCook     = "cook"
	ReviewTargetDelivery = "delivery"
)

// CreateReviewRequest represents the request body for reviewing a delivered order
type CreateReviewRequest struct {
	Target  string  `json:"target" binding:"required,oneof=cook delivery"`
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// CreateReview handles POST /api/v1/orders/:id/reviews - rates the cook or courier of a delivered order (customers only)
func CreateReview(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
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

	db := config.GetDB().WithContext(c.Request.Context())

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "order"))
		return
	}
	if order.CustomerID != principal.ID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only the customer who placed the order can review it")
		return
	}
	if order.Status != models.StatusDelivered {
		respondError(c, http.StatusBadRequest, "ORDER_NOT_DELIVERED", "Only delivered orders can be reviewed")
		return
	}

	reviewedID := order.CookID
	if req.Target == ReviewTargetDelivery {
		if !order.HasCourier() {
			respondError(c, http.StatusBadRequest, "NO_COURIER", "This order had no courier")
			return
		}
		reviewedID = *order.DeliveryID
	}

	review := models.Review{
		OrderID:    order.ID,
		ReviewerID: principal.ID,
		ReviewedID: reviewedID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		if req.Target == ReviewTargetCook {
			return refreshDishRating(tx, order.DishID, order.CookID)
		}
		return nil
	})
	if err != nil {
		if services.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "REVIEW_EXISTS", "This order was already reviewed for that person")
			return
		}
		respondServiceError(c, services.ClassifyStoreError(err, "review"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

// ListMyReviews handles GET /api/v1/reviews/me - reviews written about the caller
func ListMyReviews(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	reviews, err := newStore().FetchReviewsFor(c.Request.Context(), principal.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
		"count":   len(reviews),
		"average": services.AverageRating(reviews, principal.ID),
	})
}

// refreshDishRating recomputes a dish's rating from the cook reviews of its orders
func refreshDishRating(tx *gorm.DB, dishID, cookID uint) error {
	reviews := []models.Review{}
	err := tx.Model(&models.Review{}).
		Joins("JOIN orders ON orders.id = reviews.order_id").
		Where("orders.dish_id = ? AND reviews.reviewed_id = ?", dishID, cookID).
		Find(&reviews).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Dish{}).Where("id = ?", dishID).Updates(map[string]interface{}{
		"rating":        services.AverageRating(reviews, cookID),
		"total_reviews": len(reviews),
	}).Error
}
