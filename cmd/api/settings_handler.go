package api

import (
	"net/http"

	emaildto "tempmail-backend/internal/email/dto"
	emailUsecasePkg "tempmail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

// SettingsHandler exposes the public inbox settings the frontend needs
// before sign-in
type SettingsHandler struct {
	emailUsecase emailUsecasePkg.EmailUsecase
}

func NewSettingsHandler(emailUsecase emailUsecasePkg.EmailUsecase) *SettingsHandler {
	return &SettingsHandler{emailUsecase: emailUsecase}
}

// GetSettings returns the allowed domains and the expiry window
// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, emaildto.SettingsResponse{
		AllowedDomains:   h.emailUsecase.AllowedDomains(),
		EmailExpiryHours: h.emailUsecase.RetentionHours(),
	})
}
