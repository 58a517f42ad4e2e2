package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/config"
	"github.com/hometaste/hometaste-api/middleware"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"github.com/hometaste/hometaste-api/utils"
)

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps a core error to its HTTP status
func respondServiceError(c *gin.Context, err error) {
	var fileErr *utils.FileUploadError
	if errors.As(err, &fileErr) {
		respondError(c, http.StatusBadRequest, fileErr.Code, fileErr.Message)
		return
	}

	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrTransient):
		status = http.StatusServiceUnavailable
	}

	respondError(c, status, svcErr.Code, svcErr.Message)
}

func currentPolicy() services.Policy {
	return services.PolicyFromConfig(config.GetConfig())
}

func newStore() services.Store {
	return services.NewGormStore(config.GetDB())
}

func newLifecycle() *services.OrderLifecycle {
	return services.NewOrderLifecycle(newStore(), currentPolicy(), services.GetStatusPublisher())
}

// findProfile loads the profile of an Auth0 subject
func findProfile(ctx context.Context, auth0ID string) (*models.Profile, error) {
	var profile models.Profile
	if err := config.GetDB().WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&profile).Error; err != nil {
		return nil, services.ClassifyStoreError(err, "profile")
	}
	return &profile, nil
}

// LookupPrincipal resolves an Auth0 subject to the principal used by the order lifecycle
func LookupPrincipal(ctx context.Context, auth0ID string) (*services.Principal, error) {
	profile, err := findProfile(ctx, auth0ID)
	if err != nil {
		return nil, err
	}
	return &services.Principal{ID: profile.ID, Role: profile.Role}, nil
}

// currentProfile loads the caller's profile, writing the error response when it cannot
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	profile, err := findProfile(c.Request.Context(), auth0ID)
	if errors.Is(err, services.ErrNotFound) {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, false
	}
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return profile, true
}

// currentPrincipal returns the principal set by RequireRole, or loads it from the profile
func currentPrincipal(c *gin.Context) (services.Principal, bool) {
	if principal, err := middleware.GetPrincipal(c); err == nil {
		return principal, true
	}
	profile, ok := currentProfile(c)
	if !ok {
		return services.Principal{}, false
	}
	return services.Principal{ID: profile.ID, Role: profile.Role}, true
}

// parseIDParam reads a positive numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// resolvePhotoURLs fills PhotoURL for dishes stored with a photo
func resolvePhotoURLs(ctx context.Context, dishes []models.Dish) {
	images := services.GetImageService()
	if images == nil {
		return
	}
	for i := range dishes {
		if dishes[i].PhotoKey == nil {
			continue
		}
		url, err := images.GetImageURL(ctx, *dishes[i].PhotoKey)
		if err != nil || url == "" {
			continue
		}
		dishes[i].PhotoURL = &url
	}
}
