package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Proof-social/proof-social-instagram-auth/internal/callback"
	"github.com/Proof-social/proof-social-instagram-auth/internal/config"
	"github.com/Proof-social/proof-social-instagram-auth/internal/identity"
	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
	"github.com/Proof-social/proof-social-instagram-auth/internal/meta"
	"github.com/Proof-social/proof-social-instagram-auth/internal/metrics"
	"github.com/Proof-social/proof-social-instagram-auth/internal/middleware"
)

// Processor is the callback state machine as the transport layer sees it.
type Processor interface {
	Process(ctx context.Context, userID, code, state, redirectURI string) (*callback.Result, error)
}

type Handler struct {
	processor    Processor
	apps         callback.AppResolver
	verifier     identity.Verifier
	dialogURL    string
	scopes       []string
	responseMode config.ResponseMode
	log          *zap.Logger
}

func NewHandler(
	processor Processor,
	apps callback.AppResolver,
	verifier identity.Verifier,
	cfg config.Config,
) *Handler {
	return &Handler{
		processor:    processor,
		apps:         apps,
		verifier:     verifier,
		dialogURL:    cfg.DialogBaseURL,
		scopes:       config.InstagramScopes,
		responseMode: cfg.CallbackResponseMode,
		log:          logger.Named("handler"),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/auth", middleware.RequireAuth(h.verifier))
	auth.POST("/:platform/login", h.login)
	auth.POST("/:platform/process-callback", h.processCallback)
}

type loginRequest struct {
	RedirectURI string `json:"redirect_uri" binding:"required"`
}

type callbackRequest struct {
	Code        string `json:"code" binding:"required"`
	State       string `json:"state" binding:"required"`
	RedirectURI string `json:"redirect_uri"`
}

func (h *Handler) login(c *gin.Context) {

	if !h.checkPlatform(c) {
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "redirect_uri is required"})
		return
	}

	app, err := h.apps.Resolve(c.Request.Context())
	if err != nil {
		h.log.Error("failed to resolve app credentials", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate authorization url"})
		return
	}

	authURL := meta.AuthCodeURL(h.dialogURL, app.AppID, req.RedirectURI, userID, h.scopes)

	h.log.Info("authorization url generated", zap.String("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

func (h *Handler) processCallback(c *gin.Context) {

	if !h.checkPlatform(c) {
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and state are required"})
		return
	}

	start := time.Now()
	res, err := h.processor.Process(c.Request.Context(), userID, req.Code, req.State, req.RedirectURI)
	metrics.CallbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		h.renderError(c, err)
		return
	}

	if res.Replayed {
		metrics.Callbacks.WithLabelValues("replay").Inc()
	} else {
		metrics.Callbacks.WithLabelValues("success").Inc()
	}

	if h.responseMode == config.ResponseModeRedirect && res.RedirectURL != "" {
		c.Redirect(http.StatusFound, res.RedirectURL)
		return
	}

	c.JSON(http.StatusOK, res)
}

// checkPlatform keeps the route shape generic while only instagram is
// wired; unknown platform values are rejected before any work happens.
func (h *Handler) checkPlatform(c *gin.Context) bool {
	if p := c.Param("platform"); p != "instagram" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + p})
		return false
	}
	return true
}

func (h *Handler) renderError(c *gin.Context, err error) {

	var status int
	var outcome, msg string
	var detail bool

	switch {
	case errors.Is(err, callback.ErrStateMismatch):
		status, outcome = http.StatusBadRequest, "state_mismatch"
		msg = "state does not match the authenticated user; restart the authorization flow"
	case errors.Is(err, callback.ErrCodeAlreadyUsed):
		status, outcome = http.StatusBadRequest, "code_already_used"
		msg = "this authorization code was already used; restart the authorization flow"
	case errors.Is(err, callback.ErrTokenExchange):
		status, outcome, detail = http.StatusBadRequest, "exchange_failed", true
		msg = "failed to exchange the authorization code"
	case errors.Is(err, callback.ErrTokenUpgrade):
		status, outcome, detail = http.StatusBadRequest, "upgrade_failed", true
		msg = "failed to obtain a long-lived token"
	case errors.Is(err, callback.ErrPersistence):
		status, outcome = http.StatusInternalServerError, "persistence_error"
		msg = "failed to store the integration; retry later"
	case errors.Is(err, callback.ErrConfig):
		status, outcome = http.StatusInternalServerError, "config_error"
		msg = "service configuration error; retry later"
	default:
		status, outcome = http.StatusInternalServerError, "internal_error"
		msg = "failed to process callback"
	}

	metrics.Callbacks.WithLabelValues(outcome).Inc()
	h.log.Warn("callback failed", zap.String("outcome", outcome), zap.Error(err))

	body := gin.H{"error": msg}
	if detail {
		// Upstream failures carry the provider's raw error so clients can
		// report it; other categories stay normalized.
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
