package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/common/middleware"
	"github.com/tourbook/service-earnings/internal/common/response"
)

// AdminHandler handles admin HTTP requests.
type AdminHandler struct {
	earningsService *application.EarningsService
	storageService  *application.StorageService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(earningsService *application.EarningsService, storageService *application.StorageService) *AdminHandler {
	return &AdminHandler{
		earningsService: earningsService,
		storageService:  storageService,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/guides/:guideId/earnings", h.GuideEarnings)
		admin.GET("/storage/diagnostic", h.StorageDiagnostic)
	}
}

// GuideEarnings handles GET /api/v1/admin/guides/:guideId/earnings.
func (h *AdminHandler) GuideEarnings(c *gin.Context) {
	dto, err := h.earningsService.GuideEarnings(c.Request.Context(), c.Param("guideId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// StorageDiagnostic handles GET /api/v1/admin/storage/diagnostic.
func (h *AdminHandler) StorageDiagnostic(c *gin.Context) {
	response.Success(c, h.storageService.Diagnose(c.Request.Context()))
}
