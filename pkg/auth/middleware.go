package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

const (
	CookieName      = "authToken"
	ContextKeyActor = "auth.actor"
)

func authLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameAuth,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySession),
	)
}

// TokenFromRequest prefers the bearer header and falls back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware rejects requests without a valid token and attaches the actor
// to both the gin context and the request context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no token"})
			return
		}

		claims, err := a.Parse(token)
		if err != nil {
			authLogger().Info("Rejected token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		SetActor(c, claims.Actor())
		c.Next()
	}
}

func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(ContextKeyActor, actor)
	c.Request = c.Request.WithContext(models.WithActor(c.Request.Context(), actor))
}

func ActorFromGin(c *gin.Context) (models.Actor, bool) {
	value, ok := c.Get(ContextKeyActor)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// Authorize enforces policy on the matched route. It must run after
// Middleware.
func Authorize(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromGin(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no token"})
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if !policy.Allows(c.Request.Method, route, actor.Role) {
			authLogger().Warn("Access denied",
				zap.Uint("userId", actor.ID),
				zap.String("role", string(actor.Role)),
				zap.String("method", c.Request.Method),
				zap.String("route", route),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		c.Next()
	}
}

// SetSessionCookie stores token in an HttpOnly, SameSite=Strict cookie.
func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
