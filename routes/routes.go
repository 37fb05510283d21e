package routes

import (
	"time"

	"servicedesk/config"
	"servicedesk/handlers"
	"servicedesk/middleware"
	"servicedesk/models"
	"servicedesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers login, self-registration and the profile of
// the caller.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", hb.AuthHandler.RegisterHandler)
		auth.POST("/login", hb.AuthHandler.LoginHandler)
		auth.GET("/me", middleware.JWTAuthMiddleware(hb.Auth), hb.AuthHandler.MeHandler)
	}
}

// RegisterUserRoutes registers user management. Listing, creation and
// deletion are admin-only; the service limits non-admin edits to one's own
// name and phone.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	users := api.Group("/users")
	users.Use(middleware.JWTAuthMiddleware(hb.Auth))
	{
		users.PATCH("/me/avatar", hb.UserHandler.UploadAvatarHandler)
		users.PUT("/me/device-token", hb.UserHandler.SetDeviceTokenHandler)
		users.GET("/:id", hb.UserHandler.GetUserHandler)
		users.PUT("/:id", hb.UserHandler.UpdateUserHandler)

		admin := users.Group("")
		admin.Use(middleware.RequireRoles(models.UserTypeAdmin))
		admin.GET("", hb.UserHandler.ListUsersHandler)
		admin.POST("", hb.UserHandler.CreateUserHandler)
		admin.GET("/technicians", hb.UserHandler.ListTechniciansHandler)
		admin.DELETE("/:id", hb.UserHandler.DeleteUserHandler)
	}
}

// RegisterEstablishmentRoutes registers establishments and sectors. Reads are
// open to any authenticated user; the service enforces admin-only writes.
func RegisterEstablishmentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	est := api.Group("/establishments")
	est.Use(middleware.JWTAuthMiddleware(hb.Auth))
	{
		est.GET("", hb.EstablishmentHandler.ListHandler)
		est.POST("", hb.EstablishmentHandler.CreateHandler)
		est.GET("/:id", hb.EstablishmentHandler.GetHandler)
		est.PUT("/:id", hb.EstablishmentHandler.UpdateHandler)
		est.DELETE("/:id", hb.EstablishmentHandler.DeleteHandler)

		est.GET("/:id/sectors", hb.EstablishmentHandler.ListSectorsHandler)
		est.POST("/:id/sectors", hb.EstablishmentHandler.CreateSectorHandler)
		est.DELETE("/:id/sectors/:sectorId", hb.EstablishmentHandler.DeleteSectorHandler)
	}
}

func RegisterTitleRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	titles := api.Group("/titles")
	titles.Use(middleware.JWTAuthMiddleware(hb.Auth))
	{
		titles.GET("", hb.TitleHandler.ListHandler)
		titles.POST("", hb.TitleHandler.CreateHandler)
		titles.PUT("/:id", hb.TitleHandler.UpdateHandler)
		titles.DELETE("/:id", hb.TitleHandler.DeleteHandler)
	}
}

// RegisterServiceOrderRoutes registers order CRUD and the lifecycle actions.
// Authorization per action lives in the service.
func RegisterServiceOrderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	so := api.Group("/service-orders")
	so.Use(middleware.JWTAuthMiddleware(hb.Auth))
	{
		h := hb.ServiceOrderHandler
		so.POST("", h.CreateHandler)
		so.GET("", h.ListHandler)
		so.GET("/:id", h.GetHandler)
		so.PUT("/:id", h.UpdateHandler)
		so.DELETE("/:id", h.DeleteHandler)
		so.GET("/:id/history", h.HistoryHandler)

		so.PATCH("/:id/assign", h.AssignHandler)
		so.PATCH("/:id/start", h.StartHandler)
		so.PATCH("/:id/pause", h.PauseHandler)
		so.PATCH("/:id/resume", h.ResumeHandler)
		so.PATCH("/:id/complete", h.CompleteHandler)
		so.PATCH("/:id/confirm", h.ConfirmHandler)
		so.PATCH("/:id/reopen", h.ReopenHandler)
		so.PATCH("/:id/cancel", h.CancelHandler)
		so.PATCH("/:id/status", h.StatusHandler)
		so.PATCH("/:id/feedback", h.FeedbackHandler)
	}
}

func RegisterReportRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	reports := api.Group("/reports")
	reports.Use(middleware.JWTAuthMiddleware(hb.Auth), middleware.RequireRoles(models.UserTypeAdmin))
	{
		reports.GET("/summary", hb.ReportHandler.SummaryHandler)
		reports.GET("/technicians", hb.ReportHandler.TechniciansHandler)
		reports.POST("/export", hb.ReportHandler.ExportHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler.HealthCheckHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(utils.ErrorHandler())
	r.Use(cors.New(corsConfig(config.AllowedOrigins())))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	RegisterAuthRoutes(api, hb)
	RegisterUserRoutes(api, hb)
	RegisterEstablishmentRoutes(api, hb)
	RegisterTitleRoutes(api, hb)
	RegisterServiceOrderRoutes(api, hb)
	RegisterReportRoutes(api, hb)
}

// corsConfig allows every origin when none are configured or "*" is listed.
// Credentials are only allowed for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", utils.TokenTypeHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
