package delivery

import (
	"errors"
	"net/http"

	emaildomain "tempmail-backend/internal/email/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps usecase errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var vErr *emaildomain.ValidationError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, emaildomain.ErrGmailTokenExpired):
		c.JSON(http.StatusConflict, gin.H{"error": emaildomain.ErrGmailTokenExpired.Error(), "needs_gmail_setup": true})
	case errors.Is(err, emaildomain.ErrGmailNotConfigured):
		c.JSON(http.StatusConflict, gin.H{"error": emaildomain.ErrGmailNotConfigured.Error(), "needs_gmail_setup": true})
	case errors.Is(err, emaildomain.ErrFetchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": emaildomain.ErrFetchFailed.Error(), "retryable": true})
	case errors.Is(err, emaildomain.ErrEmailNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
