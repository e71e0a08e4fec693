package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	authUsecase "tempmail-backend/internal/auth/usecase"
	emailUsecasePkg "tempmail-backend/internal/email/usecase"
	"tempmail-backend/pkg/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	emailUsecase  emailUsecasePkg.EmailUsecase
	setupUsecase  emailUsecasePkg.SetupUsecase
	recentUsecase emailUsecasePkg.RecentUsecase
	config        *config.Config
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	emailUc emailUsecasePkg.EmailUsecase,
	setupUc emailUsecasePkg.SetupUsecase,
	recentUc emailUsecasePkg.RecentUsecase,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:   authUc,
		emailUsecase:  emailUc,
		setupUsecase:  setupUc,
		recentUsecase: recentUc,
		config:        cfg,
	}
}

// Router builds the gin engine with middleware and every route registered
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware(h.config.CORSOrigins))

	SetupRoutes(r, h)
	return r
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware echoes allowed origins. An empty list allows any origin.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("Request completed with server error")
			return
		}
		entry.Debug("Request completed")
	}
}
