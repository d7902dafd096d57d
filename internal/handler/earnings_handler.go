package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/common/domain"
	"github.com/tourbook/service-earnings/internal/common/middleware"
	"github.com/tourbook/service-earnings/internal/common/response"
)

// EarningsHandler handles HTTP requests for the signed-in viewer's earnings.
type EarningsHandler struct {
	service *application.EarningsService
}

// NewEarningsHandler creates a new EarningsHandler.
func NewEarningsHandler(service *application.EarningsService) *EarningsHandler {
	return &EarningsHandler{service: service}
}

// RegisterRoutes registers all earnings routes on the given router group.
func (h *EarningsHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	earnings := r.Group("/earnings")
	earnings.Use(middleware.AuthMiddleware(jwtManager))
	{
		earnings.GET("/me", h.GetMyEarnings)
		earnings.POST("/me/refresh", h.RefreshMyEarnings)
		earnings.DELETE("/me/session", h.CloseSession)
	}
}

// GetMyEarnings handles GET /api/v1/earnings/me
func (h *EarningsHandler) GetMyEarnings(c *gin.Context) {
	userID, role, ok := viewer(c)
	if !ok {
		return
	}

	response.Success(c, h.service.Open(c.Request.Context(), userID, role))
}

// RefreshMyEarnings handles POST /api/v1/earnings/me/refresh
func (h *EarningsHandler) RefreshMyEarnings(c *gin.Context) {
	userID, role, ok := viewer(c)
	if !ok {
		return
	}

	response.Success(c, h.service.Refresh(c.Request.Context(), userID, role))
}

// CloseSession handles DELETE /api/v1/earnings/me/session
func (h *EarningsHandler) CloseSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError("unauthorized"))
		return
	}

	response.Success(c, gin.H{"closed": h.service.Close(userID)})
}

// viewer reads the authenticated identity, writing 401 when it is missing.
func viewer(c *gin.Context) (string, auth.Role, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError("unauthorized"))
		return "", "", false
	}
	role, _ := middleware.GetRole(c)
	return userID, role, true
}
