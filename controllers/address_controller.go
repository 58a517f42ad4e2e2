package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"gorm.io/gorm"
)

// CreateAddressRequest represents the request body for saving a delivery address
type CreateAddressRequest struct {
	Street       string  `json:"street" binding:"required"`
	Number       string  `json:"number" binding:"required"`
	Complement   *string `json:"complement"`
	Neighborhood string  `json:"neighborhood" binding:"required"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	ZipCode      string  `json:"zip_code" binding:"required"`
	IsDefault    bool    `json:"is_default"`
}

// CreateAddress handles POST /api/v1/addresses - saves a delivery address (customers only)
func CreateAddress(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req CreateAddressRequest
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

	address := models.Address{
		UserID:       principal.ID,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		IsDefault:    req.IsDefault,
	}

	// Only one default address per user
	err := config.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND is_default = ?", principal.ID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "address"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    address,
	})
}

// ListAddresses handles GET /api/v1/addresses - lists the caller's addresses, default first
func ListAddresses(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	addresses := []models.Address{}
	err := config.GetDB().WithContext(c.Request.Context()).
		Where("user_id = ?", principal.ID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&addresses).Error
	if err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "address"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    addresses,
		"count":   len(addresses),
	})
}
