package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/maintenance"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

type RestfulServer struct {
	Server           *gin.Engine
	Maint            *maintenance.Maintenance
	Auth             *auth.Authenticator
	Policy           auth.Policy
	RateLimiterStore *common.RateLimiterStore

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// StaticDir holds the single page app. Empty disables static serving.
	StaticDir string
}

// NewRestfulServer builds a server from cfg using the default policy and a
// per client login limiter.
func NewRestfulServer(cfg *common.Config, m *maintenance.Maintenance) *RestfulServer {
	return &RestfulServer{
		Server:           gin.New(),
		Maint:            m,
		Auth:             auth.NewAuthenticator(cfg.JWTSecret),
		Policy:           DefaultPolicy(),
		RateLimiterStore: common.NewRateLimiterStore(rate.Limit(cfg.LoginRate), cfg.LoginBurst),
		SecureCookie:     cfg.IsProduction() || cfg.CookieSecure,
		StaticDir:        cfg.StaticDir,
	}
}

func serverLogger(category string) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldCategory, category),
	)
}

// CheckLoginLimiter reports whether key may attempt another login.
func (rs *RestfulServer) CheckLoginLimiter(key string) bool {
	return rs.RateLimiterStore.Allow(key)
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(requestID(), requestLogger(), gin.Recovery(), metrics.Middleware())

	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := rs.Server.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", rs.Login)
		authGroup.POST("/logout", rs.Logout)
		authGroup.GET("/verify-token", rs.Auth.Middleware(), rs.VerifyToken)
	}

	protected := api.Group("", rs.Auth.Middleware(), auth.Authorize(rs.Policy))

	devices := protected.Group("/devices")
	{
		devices.GET("", rs.ListDevices)
		devices.POST("", rs.CreateDevice)
		devices.GET("/:id", rs.GetDevice)
		devices.PUT("/:id", rs.UpdateDevice)
		devices.DELETE("/:id", rs.DeleteDevice)
	}

	technicians := protected.Group("/technicians")
	{
		technicians.GET("", rs.ListTechnicians)
		technicians.POST("", rs.CreateTechnician)
		technicians.GET("/:id", rs.GetTechnician)
		technicians.PUT("/:id", rs.UpdateTechnician)
		technicians.DELETE("/:id", rs.DeleteTechnician)
	}

	schedules := protected.Group("/maintenance")
	{
		schedules.GET("", rs.ListSchedules)
		schedules.POST("", rs.CreateSchedule)
		schedules.GET("/:id", rs.GetSchedule)
		schedules.PUT("/:id", rs.UpdateSchedule)
		schedules.DELETE("/:id", rs.DeleteSchedule)
	}

	alerts := protected.Group("/alerts")
	{
		alerts.GET("", rs.ListAlerts)
		alerts.POST("", rs.CreateAlert)
		alerts.GET("/:id", rs.GetAlert)
		alerts.PUT("/:id", rs.UpdateAlert)
		alerts.DELETE("/:id", rs.DeleteAlert)
	}

	users := protected.Group("/users")
	{
		users.GET("", rs.ListUsers)
		users.POST("", rs.CreateUser)
		users.GET("/:id", rs.GetUser)
		users.PUT("/:id", rs.UpdateUser)
		users.PUT("/:id/toggle-status", rs.ToggleUserStatus)
		users.DELETE("/:id", rs.DeleteUser)
	}

	protected.GET("/activity-logs", rs.ListActivityLogs)
	protected.GET("/dashboard", rs.GetDashboard)

	reports := protected.Group("/reports")
	{
		reports.GET("/devices", rs.ExportDevices)
		reports.GET("/maintenance", rs.ExportSchedules)
		reports.GET("/alerts", rs.ExportAlerts)
	}

	rs.Server.NoRoute(rs.NoRoute)
}

// NoRoute answers unknown API paths with JSON and serves the app shell or a
// static asset for everything else.
func (rs *RestfulServer) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"message": "API endpoint not found"})
		return
	}
	if rs.StaticDir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.Status(http.StatusNotFound)
		return
	}

	if rs.serveStatic(c, path) || rs.serveStatic(c, "/index.html") {
		return
	}
	c.Status(http.StatusNotFound)
}

// serveStatic writes name from StaticDir. http.Dir resolves name as a rooted,
// cleaned path, so ".." segments never leave the directory.
func (rs *RestfulServer) serveStatic(c *gin.Context, name string) bool {
	f, err := http.Dir(rs.StaticDir).Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	return true
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	if rs.Maint == nil || rs.Maint.Db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err := rs.Maint.Db.Ping(c.Request.Context()); err != nil {
		serverLogger(common.LoggerCategoryHealth).Error("Database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		serverLogger(common.LoggerCategoryHTTPRequests).Info("Request",
			zap.String("requestId", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
