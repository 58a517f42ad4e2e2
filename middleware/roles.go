package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
)

// PrincipalLookup resolves an Auth0 subject to the profile's principal.
// It returns an error matching services.ErrNotFound when the user has no profile yet.
type PrincipalLookup func(ctx context.Context, auth0ID string) (*services.Principal, error)

// RequireRole is a middleware that only lets principals with role through.
// Denied requests get 403 with the page the client should redirect to.
func RequireRole(role models.Role, lookup PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		principal, err := lookup(c.Request.Context(), auth0ID)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SERVICE_UNAVAILABLE",
					"message": "Could not load user profile, please retry",
				},
			})
			c.Abort()
			return
		}
		if err != nil {
			principal = nil
		}

		decision := services.CheckAccess(principal, role, c.Request.URL.Path)
		if !decision.Allowed {
			code, message := "FORBIDDEN", "This area is reserved for "+string(role)+" accounts"
			if principal == nil {
				code, message = "PROFILE_REQUIRED", "User profile not found. Please create a profile first."
			}
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":     code,
					"message":  message,
					"redirect": decision.Redirect,
				},
			})
			c.Abort()
			return
		}

		c.Set("principal", *principal)
		c.Next()
	}
}

// GetPrincipal returns the principal stored by RequireRole
func GetPrincipal(c *gin.Context) (services.Principal, error) {
	value, exists := c.Get("principal")
	if !exists {
		return services.Principal{}, &AuthError{Code: "MISSING_PRINCIPAL", Message: "Principal not found in context"}
	}

	principal, ok := value.(services.Principal)
	if !ok {
		return services.Principal{}, &AuthError{Code: "INVALID_PRINCIPAL", Message: "Principal is not in the expected format"}
	}

	return principal, nil
}
