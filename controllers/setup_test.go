package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/hometaste/hometaste-api/middleware"
	"github.com/hometaste/hometaste-api/models"
	"github.com/hometaste/hometaste-api/services"
	"github.com/hometaste/hometaste-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.OpenDB(t)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware sets up the context exactly as EnsureValidToken does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
			CustomClaims:     &middleware.CustomClaims{Role: role},
		})
		c.Next()
	}
}

// asUser authenticates as auth0ID and requires role, the way main wires protected routes
func asUser(auth0ID string, role models.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mockAuthMiddleware(auth0ID, string(role), "token-"+auth0ID),
		middleware.RequireRole(role, LookupPrincipal),
	}
}

func createProfile(t *testing.T, db *gorm.DB, auth0ID string, role models.Role) models.Profile {
	t.Helper()
	profile := models.Profile{
		Auth0ID:  auth0ID,
		FullName: "User " + auth0ID,
		Email:    auth0ID + "@hometaste.test",
		Role:     role,
	}
	require.NoError(t, db.Create(&profile).Error)
	g := models.NewGamification(profile.ID)
	require.NoError(t, db.Create(&g).Error)
	return profile
}

func createDish(t *testing.T, db *gorm.DB, cook models.Profile, name, category, price string, eatIn bool) models.Dish {
	t.Helper()
	dish := models.Dish{
		CookID:       cook.ID,
		Name:         name,
		Description:  name + " made at home",
		Price:        decimal.RequireFromString(price),
		Category:     category,
		AcceptsEatIn: eatIn,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&dish).Error)
	return dish
}

func createAddress(t *testing.T, db *gorm.DB, owner models.Profile) models.Address {
	t.Helper()
	address := models.Address{
		UserID:       owner.ID,
		Street:       "Rua das Flores",
		Number:       "42",
		Neighborhood: "Centro",
		City:         "Recife",
		State:        "PE",
		ZipCode:      "50000-000",
	}
	require.NoError(t, db.Create(&address).Error)
	return address
}

func createOrder(t *testing.T, db *gorm.DB, customer models.Profile, dish models.Dish, status models.OrderStatus, deliveryType models.DeliveryType) models.Order {
	t.Helper()
	order := models.Order{
		CustomerID:   customer.ID,
		CookID:       dish.CookID,
		DishID:       dish.ID,
		Quantity:     1,
		TotalPrice:   dish.Price,
		DeliveryType: deliveryType,
		Status:       status,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

// doJSON sends body as JSON and decodes the response envelope
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errData["code"].(string)
	return code
}
