package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anime-shed/palette-inspector/internal/config"
	apperrors "github.com/anime-shed/palette-inspector/internal/errors"
	"github.com/anime-shed/palette-inspector/internal/logger"
	"github.com/anime-shed/palette-inspector/internal/observer"
	"github.com/anime-shed/palette-inspector/internal/repository"
	"github.com/anime-shed/palette-inspector/internal/service"
	"github.com/anime-shed/palette-inspector/internal/state"
	"github.com/anime-shed/palette-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const (
	sessionCookie = "palette_session"
	csrfFieldName = "csrf_token"
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	Service  service.PaletteService
	Sessions repository.SessionRepository
	Metrics  *observer.MetricsObserver
	Config   *config.Config
}

func NewHandler(d Deps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(loadTemplates())

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(d.Config.MaxRequestBodySize),
		errorHandler(),
	)

	// Stateless routes
	r.GET("/health", healthCheck(d))
	r.POST("/api/analyze", analyzeAPI(d))

	// Screens share one state container per browser session. Only the first
	// upload opens a session; other routes see an empty container until then.
	r.POST("/upload", sessionMiddleware(d.Sessions, d.Config.SecureCookies, true), uploadFiles(d))

	pages := r.Group("/", sessionMiddleware(d.Sessions, d.Config.SecureCookies, false))
	pages.GET("/", welcomePage(d))
	pages.GET("/upload", uploadPage(d))
	pages.POST("/upload/:index/remove", removeFile(d))
	pages.POST("/analyze", startAnalysis(d))
	pages.GET("/analyze", analyzePage(d))
	pages.GET("/analyze/progress", analyzeProgress(d))
	pages.GET("/result", resultPage(d))
	pages.POST("/result/save", saveResult(d))
	pages.POST("/reset", resetFlow(d))

	if d.Config.CSRFKey == "" {
		return r
	}
	return protect([]byte(d.Config.CSRFKey), d.Config.SecureCookies, r)
}

// protect guards the form routes with a CSRF token. The JSON API is exempt.
func protect(key []byte, secure bool, next http.Handler) http.Handler {
	guarded := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
	)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			r = csrf.UnsafeSkipCheck(r)
		}
		guarded.ServeHTTP(w, r)
	})
}

// sessionMiddleware mounts the caller's state container on the request context.
// When the cookie is missing or stale it opens a new session if open is set, and
// otherwise mounts a throwaway empty container that is never stored.
func sessionMiddleware(sessions repository.SessionRepository, secure, open bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		container, err := sessions.Lookup(id)
		switch {
		case err == nil:
		case open:
			if id != "" {
				logger.WithError(err).Debug("Session not found, opening a new one")
			}
			id, container = sessions.Open()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id, 0, "/", "", secure, true)
		default:
			container = state.NewContainer()
		}

		c.Request = c.Request.WithContext(state.WithContainer(c.Request.Context(), container))
		c.Next()
	}
}

// sessionState returns the request's container or answers with an internal error
func sessionState(c *gin.Context) (*state.Container, bool) {
	container, err := state.FromContext(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "session unavailable",
			apperrors.NewInternalError("state container missing", err))
		return nil, false
	}
	return container, true
}

func healthCheck(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics := map[string]interface{}{}
		if d.Metrics != nil {
			metrics = d.Metrics.GetMetrics()
		}
		metrics["active_sessions"] = d.Sessions.Len()

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "available",
			Version: Version,
			Time:    time.Now().UTC().Format(time.RFC3339),
			Metrics: metrics,
		})
	}
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}).Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
