package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/common/domain"
	"github.com/tourbook/service-earnings/internal/common/middleware"
	"github.com/tourbook/service-earnings/internal/common/response"
)

const avatarFormField = "avatar"

// ProfileHandler handles profile media uploads.
type ProfileHandler struct {
	storage *application.StorageService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(storage *application.StorageService) *ProfileHandler {
	return &ProfileHandler{storage: storage}
}

// RegisterRoutes registers profile routes.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	profile := r.Group("/profile")
	profile.Use(middleware.AuthMiddleware(jwtManager))
	{
		profile.POST("/avatar", h.UploadAvatar)
	}
}

// UploadAvatar handles POST /api/v1/profile/avatar (multipart field "avatar").
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError("unauthorized"))
		return
	}

	header, err := c.FormFile(avatarFormField)
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "unable to read avatar file")
		return
	}
	defer file.Close()

	url, err := h.storage.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"url": url})
}
