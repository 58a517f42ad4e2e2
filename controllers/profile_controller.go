package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/middleware"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"gorm.io/gorm"
)

// CreateProfileRequest carries the fields Auth0 does not know about
type CreateProfileRequest struct {
	Role  models.Role `json:"role" binding:"omitempty"`
	Phone *string     `json:"phone" binding:"omitempty"`
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	FullName string      `json:"full_name" binding:"omitempty"`
	Email    string      `json:"email" binding:"omitempty,email"`
	Phone    *string     `json:"phone" binding:"omitempty"`
	Role     models.Role `json:"role" binding:"omitempty"`
}

// CreateProfile handles POST /api/v1/profiles - creates the caller's profile from Auth0 userinfo
// The gamification record is created in the same transaction
func CreateProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	// The body is optional
	var req CreateProfileRequest
	if c.Request.ContentLength > 0 {
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
	}

	// Role: request body, then token claim, then customer
	role := req.Role
	if role == "" {
		role = middleware.GetRoleClaim(c)
	}
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		respondError(c, http.StatusBadRequest, "INVALID_ROLE", "Role must be one of cook, customer or delivery")
		return
	}

	cfg := config.GetConfig()
	if cfg == nil {
		respondError(c, http.StatusInternalServerError, "CONFIG_ERROR", "Configuration not loaded")
		return
	}
	var identity services.UserInfoFetcher = services.NewAuth0Service(cfg)
	userInfo, err := identity.GetUserInfo(c.Request.Context(), accessToken)
	if errors.Is(err, services.ErrTransient) {
		respondServiceError(c, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	profile := models.Profile{
		Auth0ID:  auth0ID,
		FullName: userInfo.Name,
		Email:    userInfo.Email,
		Phone:    req.Phone,
		Role:     role,
	}
	if profile.Phone == nil && userInfo.PhoneNumber != "" {
		phone := userInfo.PhoneNumber
		profile.Phone = &phone
	}

	db := config.GetDB()
	err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		g := models.NewGamification(profile.ID)
		return tx.Create(&g).Error
	})
	if err != nil {
		if services.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		respondServiceError(c, services.ClassifyStoreError(err, "profile"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"data":     profile,
		"redirect": services.HomePath(profile.Role),
	})
}

// GetMyProfile handles GET /api/v1/profiles/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// UpdateMyProfile handles PUT /api/v1/profiles/me - updates current user's profile
// The role is fixed at creation
func UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
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

	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	if req.Role != "" && req.Role != profile.Role {
		respondError(c, http.StatusBadRequest, "ROLE_IMMUTABLE", "The role of a profile cannot be changed")
		return
	}

	updates := make(map[string]interface{})
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    profile,
		})
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Model(profile).Updates(updates).Error; err != nil {
		if services.IsUniqueViolation(err) {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		respondServiceError(c, services.ClassifyStoreError(err, "profile"))
		return
	}

	if err := db.First(profile, profile.ID).Error; err != nil {
		respondServiceError(c, services.ClassifyStoreError(err, "profile"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// GetSessionRedirect handles GET /api/v1/session/redirect - where to send the user after sign-in
// Users without a profile go to the landing page
func GetSessionRedirect(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	profile, err := findProfile(c.Request.Context(), auth0ID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		respondServiceError(c, err)
		return
	}

	role := models.Role("")
	if profile != nil {
		role = profile.Role
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"role":     role,
			"redirect": services.HomePath(role),
		},
	})
}
