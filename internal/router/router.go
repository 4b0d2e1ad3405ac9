package router

import (
	"net/http"
	"time"

	"barriored/internal/handler"
	"barriored/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	User      *handler.UserHandler
	OTP       *handler.OTPHandler
	Community *handler.CommunityHandler
	Business  *handler.BusinessHandler
	Post      *handler.PostHandler
	Alert     *handler.AlertHandler
	Upload    *handler.UploadHandler
}

type Options struct {
	Mode           string
	AllowedOrigins []string
	// UploadDir 本地存储时挂载 /uploads
	UploadDir string
}

func InitRouter(h Handlers, actors middleware.ActorResolver, tenants middleware.TenantResolver, opts Options, logger *zap.Logger) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.HeaderRequestID)
	corsCfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	corsCfg.MaxAge = 12 * time.Hour
	if len(opts.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	requireAuth := middleware.RequireAuth(actors)
	optionalAuth := middleware.OptionalAuth(actors)

	api := r.Group("/api")

	// 认证相关接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", h.User.Signup)
		authGroup.POST("/login", h.User.Login)
		authGroup.POST("/refresh", h.User.Refresh)
		authGroup.POST("/logout", requireAuth, h.User.Logout)
		authGroup.GET("/me", requireAuth, h.User.Me)
		authGroup.POST("/whatsapp-otp/send", h.OTP.Send)
		authGroup.POST("/whatsapp-otp/verify", h.OTP.Verify)
	}

	api.POST("/upload", requireAuth, h.Upload.Upload)

	api.GET("/communities", h.Community.List)
	api.POST("/communities", requireAuth, h.Community.Create)

	categoryGroup := api.Group("/categories")
	{
		categoryGroup.GET("", h.Community.ListCategories)
		categoryGroup.POST("", requireAuth, h.Community.CreateCategory)
		categoryGroup.PATCH("/:id", requireAuth, h.Community.UpdateCategory)
		categoryGroup.DELETE("/:id", requireAuth, h.Community.DeleteCategory)
	}

	// 社区内接口，:community 为 slug
	tenant := api.Group("/communities/:community", middleware.Tenant(tenants))
	tenant.GET("", h.Community.Detail)

	businessGroup := tenant.Group("/businesses")
	{
		businessGroup.GET("", h.Business.List)
		businessGroup.GET("/map", h.Business.Map)
		businessGroup.GET("/slug/:slug", optionalAuth, h.Business.GetBySlug)
		businessGroup.GET("/:id", optionalAuth, h.Business.Get)
		businessGroup.POST("", requireAuth, h.Business.Submit)
		businessGroup.PATCH("/:id", requireAuth, h.Business.Update)
		businessGroup.POST("/:id/approve", requireAuth, h.Business.Approve)
		businessGroup.POST("/:id/reject", requireAuth, h.Business.Reject)
		businessGroup.DELETE("/:id", requireAuth, h.Business.Delete)
	}

	postGroup := tenant.Group("/posts")
	{
		postGroup.GET("", h.Post.ListByCommunity)
		postGroup.GET("/:id", optionalAuth, h.Post.GetPost)
		postGroup.POST("", requireAuth, h.Post.CreatePost)
		postGroup.PATCH("/:id", requireAuth, h.Post.UpdatePost)
		postGroup.POST("/:id/approve", requireAuth, h.Post.Approve)
		postGroup.POST("/:id/reject", requireAuth, h.Post.Reject)
		postGroup.POST("/:id/pin", requireAuth, h.Post.Pin)
		postGroup.DELETE("/:id", requireAuth, h.Post.DeletePost)
	}

	alertGroup := tenant.Group("/alerts")
	{
		alertGroup.GET("", h.Alert.ListAlerts)
		alertGroup.POST("", requireAuth, h.Alert.CreateAlert)
		alertGroup.PATCH("/:id", requireAuth, h.Alert.UpdateAlert)
		alertGroup.DELETE("/:id", requireAuth, h.Alert.DeleteAlert)
	}

	serviceGroup := tenant.Group("/services")
	{
		serviceGroup.GET("", h.Alert.ListServices)
		serviceGroup.POST("", requireAuth, h.Alert.CreateService)
		serviceGroup.PATCH("/:id", requireAuth, h.Alert.UpdateService)
		serviceGroup.DELETE("/:id", requireAuth, h.Alert.DeleteService)
	}

	meGroup := tenant.Group("/me", requireAuth)
	{
		meGroup.GET("/businesses", h.Business.ListMine)
		meGroup.GET("/posts", h.Post.ListMine)
	}

	// 管理员判断在 service 里做
	adminGroup := tenant.Group("/admin", requireAuth)
	{
		adminGroup.GET("/businesses", h.Business.ListAdmin)
		adminGroup.GET("/posts", h.Post.ListAdmin)
		adminGroup.GET("/alerts", h.Alert.ListAllAlerts)
		adminGroup.GET("/services", h.Alert.ListAllServices)
	}

	return r
}
