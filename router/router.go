package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/queue-app/config"
	"github.com/yeremiapane/queue-app/controllers"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/middlewares"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
)

// Deps are the long-lived objects the handlers share. Activity and Gatherer
// may be nil.
type Deps struct {
	Config   *config.Config
	Store    *store.QueueStore
	Hub      *hub.Hub
	Activity controllers.ActivityLog
	Gatherer prometheus.Gatherer
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(controllers.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Not found"))
	})

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.ErrorLogger.WithField("panic", fmt.Sprint(recovered)).Error("Recovered from panic")
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		c.Abort()
	}))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigin))
	if cfg.RateLimitPerSecond > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitPerSecond, time.Second).RateLimit())
	}

	queueCtrl := controllers.NewQueueController(deps.Store, deps.Activity, cfg.PublicBaseURL, cfg.SeedDemoData)
	hubCtrl := controllers.NewHubController(deps.Hub, deps.Store, cfg.AllowedOrigin)
	authCtrl := controllers.NewAuthController(cfg.StaffAuthEnabled, cfg.StaffPasswordHash, cfg.JWTSecret, cfg.JWTTTL)

	staff := middlewares.StaffAuth(cfg.StaffAuthEnabled, []byte(cfg.JWTSecret))
	joinLimiter := middlewares.NewJoinRateLimiter(cfg.JoinRatePerMinute)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	r.POST("/api/auth/login", authCtrl.Login)

	api := r.Group("/api/queue")
	{
		api.POST("/create", queueCtrl.CreateQueue)
		api.GET("/:id", queueCtrl.GetQueue)
		api.POST("/:id/join", joinLimiter.Middleware(), queueCtrl.JoinQueue)
		api.GET("/:id/customer/:customerId", queueCtrl.GetCustomer)
		api.GET("/:id/share", queueCtrl.ShareQueue)
		api.GET("/:id/ws", hubCtrl.QueueSocket)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	dashboard := r.Group("/api/queue", staff)
	{
		dashboard.GET("/all", queueCtrl.GetAllQueues)
		dashboard.POST("/:id/serve", queueCtrl.ServeCustomer)
		dashboard.DELETE("/:id/remove", queueCtrl.RemoveCustomer)
		dashboard.DELETE("/:id/delete", queueCtrl.DeleteQueue)
		dashboard.PATCH("/:id/status", queueCtrl.SetQueueStatus)
		dashboard.GET("/:id/activity", queueCtrl.GetActivity)
	}
	r.GET("/ws/queues", staff, hubCtrl.DashboardSocket)

	// /create and /all are shadowed by /:id for other methods, so their
	// 405 answers are registered explicitly.
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		r.Handle(method, "/api/queue/create", controllers.MethodNotAllowed)
	}
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		r.Handle(method, "/api/queue/all", controllers.MethodNotAllowed)
	}

	return r
}
