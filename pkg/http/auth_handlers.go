package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
	"liyu1981.xyz/maintenance-service/pkg/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"username": z.String().Min(1).Required(),
	"password": z.String().Min(1).Required(),
})

func (rs *RestfulServer) Login(c *gin.Context) {
	logger := serverLogger(common.LoggerCategorySession)

	if !rs.CheckLoginLimiter(c.ClientIP()) {
		metrics.IncLogin("limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts"})
		return
	}

	var req LoginRequest
	if errs := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		respondBadRequest(c, errs)
		return
	}

	user, err := rs.Maint.User.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.IncLogin("failure")
		logger.Info("Login failed", zap.String("username", req.Username), zap.String("clientIp", c.ClientIP()))
		respondError(c, common.LoggerCategorySession, err)
		return
	}

	actor := models.Actor{ID: user.ID, Username: user.Username, Role: user.Role}
	token, _, err := rs.Auth.Issue(actor)
	if err != nil {
		respondError(c, common.LoggerCategorySession, err)
		return
	}

	auth.SetSessionCookie(c, token, int(rs.Auth.TTL().Seconds()), rs.SecureCookie)
	metrics.IncLogin(metrics.ResultSuccess)
	logger.Info("Login succeeded", zap.Uint("userId", user.ID))

	c.JSON(http.StatusOK, gin.H{"token": token, "user": actor})
}

func (rs *RestfulServer) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, rs.SecureCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// VerifyToken re-reads the user so deleted or deactivated accounts lose
// access before their token expires.
func (rs *RestfulServer) VerifyToken(c *gin.Context) {
	actor, _ := auth.ActorFromGin(c)

	user, err := rs.Maint.User.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		if common.IsNotFoundError(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		respondError(c, common.LoggerCategorySession, err)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account is inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  models.Actor{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}
