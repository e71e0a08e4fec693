package delivery

import (
	"net/http"
	"net/url"

	emaildomain "tempmail-backend/internal/email/domain"
	emaildto "tempmail-backend/internal/email/dto"
	"tempmail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

const setupPath = "/setup/gmail"

// SetupHandler serves the Gmail connection flow
type SetupHandler struct {
	setupUsecase usecase.SetupUsecase
	frontendURL  string
}

func NewSetupHandler(setupUsecase usecase.SetupUsecase, frontendURL string) *SetupHandler {
	return &SetupHandler{
		setupUsecase: setupUsecase,
		frontendURL:  frontendURL,
	}
}

func (h *SetupHandler) Status(c *gin.Context) {
	status, err := h.setupUsecase.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// AuthURL issues a one-time state for the signed-in user and returns the
// consent URL
// GET /api/gmail/auth-url
func (h *SetupHandler) AuthURL(c *gin.Context) {
	url, state, err := h.setupUsecase.BeginSetup(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":   url,
		"state": state,
	})
}

// Callback is the OAuth redirect target. Google sends the browser here without
// our bearer token, so the state issued by AuthURL is what authorizes the
// request. It always answers with a redirect back to the setup page.
// GET /api/gmail/callback?code=&state=&error=
func (h *SetupHandler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.redirect(c, url.Values{"error": {errParam}})
		return
	}

	code := c.Query("code")
	if code == "" {
		h.redirect(c, url.Values{"error": {"No code received"}})
		return
	}

	status, err := h.setupUsecase.CompleteCallback(c.Request.Context(), c.Query("state"), code)
	if err != nil {
		h.redirect(c, url.Values{"error": {err.Error()}})
		return
	}

	params := url.Values{"success": {"true"}}
	if status.Email != "" {
		params.Set("email", status.Email)
	}
	h.redirect(c, params)
}

// Exchange completes setup from a code posted by the frontend
// POST /api/gmail/exchange
func (h *SetupHandler) Exchange(c *gin.Context) {
	var req emaildto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No code provided"})
		return
	}

	status, err := h.setupUsecase.CompleteSetup(c.Request.Context(), req.Code)
	if err != nil {
		if emaildomain.IsValidationError(err) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to exchange code for token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "email": status.Email})
}

func (h *SetupHandler) Disconnect(c *gin.Context) {
	if err := h.setupUsecase.Disconnect(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SetupHandler) redirect(c *gin.Context, params url.Values) {
	c.Redirect(http.StatusFound, h.frontendURL+setupPath+"?"+params.Encode())
}
