package delivery

import (
	"net/http"
	"strconv"

	emaildomain "tempmail-backend/internal/email/domain"
	emaildto "tempmail-backend/internal/email/dto"
	"tempmail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxLimit = 500

type EmailHandler struct {
	emailUsecase  usecase.EmailUsecase
	recentUsecase usecase.RecentUsecase
}

func NewEmailHandler(emailUsecase usecase.EmailUsecase, recentUsecase usecase.RecentUsecase) *EmailHandler {
	return &EmailHandler{
		emailUsecase:  emailUsecase,
		recentUsecase: recentUsecase,
	}
}

// GetInboxEmails lists the mail of one virtual inbox
// GET /api/inboxes/:address/emails?limit=&include_expired=
func (h *EmailHandler) GetInboxEmails(c *gin.Context) {
	inbox, err := h.emailUsecase.ParseInboxAddress(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	limit := usecase.DefaultMaxResults
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}

	emails, err := h.emailUsecase.FetchEmails(c.Request.Context(), usecase.FetchOptions{
		InboxName:      inbox.Name,
		Domain:         inbox.Domain,
		MaxResults:     limit,
		ExcludeExpired: !includeExpired(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if userID := c.GetString("userID"); userID != "" {
		if err := h.recentUsecase.Touch(c.Request.Context(), userID, inbox.Address()); err != nil {
			log.WithError(err).WithField("address", inbox.Address()).Warn("Failed to save recent inbox")
		}
	}

	if emails == nil {
		emails = []*emaildomain.Email{}
	}
	c.JSON(http.StatusOK, emaildto.EmailsResponse{
		Address:    inbox.Address(),
		Emails:     emails,
		TotalCount: len(emails),
		HasMore:    false,
	})
}

// GetEmail returns one message of an inbox and marks it read
// GET /api/inboxes/:address/emails/:id
func (h *EmailHandler) GetEmail(c *gin.Context) {
	inbox, err := h.emailUsecase.ParseInboxAddress(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	email, err := h.emailUsecase.GetEmailByID(c.Request.Context(), c.Param("id"), inbox.Address(), !includeExpired(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if email == nil {
		respondError(c, emaildomain.ErrEmailNotFound)
		return
	}

	// Mark as read when viewing
	if !email.IsRead {
		if err := h.emailUsecase.MarkRead(c.Request.Context(), email.ID); err != nil {
			log.WithError(err).WithField("message_id", email.ID).Warn("Failed to mark email as read")
		} else {
			email.IsRead = true
		}
	}

	c.JSON(http.StatusOK, email)
}

// CountInboxEmails returns how many messages an inbox holds, for the sidebar
// GET /api/inboxes/:address/count
func (h *EmailHandler) CountInboxEmails(c *gin.Context) {
	inbox, err := h.emailUsecase.ParseInboxAddress(c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	count, err := h.emailUsecase.CountEmails(c.Request.Context(), inbox.Name, inbox.Domain, !includeExpired(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, emaildto.CountResponse{Address: inbox.Address(), Count: count})
}

func (h *EmailHandler) MarkAsRead(c *gin.Context) {
	if err := h.emailUsecase.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email marked as read"})
}

func (h *EmailHandler) MarkAsUnread(c *gin.Context) {
	if err := h.emailUsecase.MarkUnread(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email marked as unread"})
}

// includeExpired reads ?include_expired, defaulting to true.
func includeExpired(c *gin.Context) bool {
	if v := c.Query("include_expired"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return true
}
