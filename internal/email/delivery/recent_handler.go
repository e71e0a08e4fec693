package delivery

import (
	"net/http"

	emaildto "tempmail-backend/internal/email/dto"
	"tempmail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

type RecentHandler struct {
	recentUsecase usecase.RecentUsecase
}

func NewRecentHandler(recentUsecase usecase.RecentUsecase) *RecentHandler {
	return &RecentHandler{recentUsecase: recentUsecase}
}

func (h *RecentHandler) List(c *gin.Context) {
	entries, err := h.recentUsecase.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emaildto.NewRecentInboxesResponse(entries))
}

func (h *RecentHandler) Remove(c *gin.Context) {
	if err := h.recentUsecase.Remove(c.Request.Context(), c.GetString("userID"), c.Param("address")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RecentHandler) Clear(c *gin.Context) {
	if err := h.recentUsecase.Clear(c.Request.Context(), c.GetString("userID")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
