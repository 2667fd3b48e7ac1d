package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/repofolio/repofolio/internal/config"
)

const (
	// AccessTokenCookie carries the viewer's GitHub token between requests
	AccessTokenCookie = "access_token"
	// StateCookie binds an authorization callback to the browser that started it
	StateCookie = "oauth_state"

	accessTokenMaxAge = 24 * 60 * 60
	stateMaxAge       = 10 * 60

	callbackPath = "/auth/github/callback"
)

// Handler implements the GitHub OAuth web flow
type Handler struct {
	oauth  *oauth2.Config
	appURL string
	secure bool
	logger *logrus.Logger
}

// NewHandler creates the OAuth handler from configuration. Without a client id
// and secret the endpoints answer 503.
func NewHandler(cfg *config.Config, logger *logrus.Logger) *Handler {
	var oauthCfg *oauth2.Config
	if cfg.GitHub.OAuthConfigured() {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURL,
			Scopes:       cfg.GitHub.Scopes,
			Endpoint:     githuboauth.Endpoint,
		}
	}
	return NewHandlerWithOAuth(oauthCfg, cfg.AppURL, !cfg.IsDevelopment(), logger)
}

// NewHandlerWithOAuth creates the OAuth handler around an explicit client configuration
func NewHandlerWithOAuth(oauthCfg *oauth2.Config, appURL string, secure bool, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		oauth:  oauthCfg,
		appURL: appURL,
		secure: secure,
		logger: logger,
	}
}

func (h *Handler) notConfigured(c *gin.Context) bool {
	if h.oauth != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   "not_configured",
		"message": "GitHub OAuth is not configured",
	})
	return true
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.secure, true)
}

// redirectOptions derives the callback URL from the inbound request when none
// is configured. The shared oauth2.Config is never mutated.
func (h *Handler) redirectOptions(c *gin.Context) []oauth2.AuthCodeOption {
	if h.oauth.RedirectURL != "" {
		return nil
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("redirect_uri", scheme+"://"+c.Request.Host+callbackPath),
	}
}

// Login godoc
// @Summary Start GitHub login
// @Description Redirects to the GitHub authorization page
// @Tags auth
// @Success 302
// @Failure 503 {object} map[string]string
// @Router /auth/github [get]
func (h *Handler) Login(c *gin.Context) {
	if h.notConfigured(c) {
		return
	}

	state := uuid.NewString()
	h.setCookie(c, StateCookie, state, stateMaxAge)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state, h.redirectOptions(c)...))
}

// Callback godoc
// @Summary Complete GitHub login
// @Description Exchanges the authorization code and stores the access token cookie
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /auth/github"
// @Success 302
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /auth/github/callback [get]
func (h *Handler) Callback(c *gin.Context) {
	if h.notConfigured(c) {
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "missing authorization code",
		})
		return
	}

	expected, err := c.Cookie(StateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "OAuth state mismatch",
		})
		return
	}
	h.setCookie(c, StateCookie, "", -1)

	token, err := h.oauth.Exchange(c.Request.Context(), code, h.redirectOptions(c)...)
	if err != nil {
		h.logger.WithError(err).Error("Failed to exchange OAuth code")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to exchange authorization code",
		})
		return
	}

	h.setCookie(c, AccessTokenCookie, token.AccessToken, accessTokenMaxAge)
	h.logger.Info("GitHub login completed")
	c.Redirect(http.StatusFound, h.appURL)
}

// Logout godoc
// @Summary Log out
// @Description Clears the access token cookie
// @Tags auth
// @Success 302
// @Router /auth/logout [get]
func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, AccessTokenCookie, "", -1)
	c.Redirect(http.StatusFound, h.appURL)
}
