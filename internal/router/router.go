package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhighway/backend/internal/handler"
	"studyhighway/backend/internal/middleware"
	"studyhighway/backend/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	goalHandler *handler.GoalHandler,
	subjectHandler *handler.SubjectHandler,
	simuladoHandler *handler.SimuladoHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	sess := authed.Group("/session")
	sess.GET("", sessionHandler.GetState)
	sess.POST("/timers/:id/start", sessionHandler.Start)
	sess.POST("/timers/:id/pause", sessionHandler.Pause)
	sess.POST("/timers/:id/stop", sessionHandler.Stop)
	sess.POST("/free-timers", sessionHandler.CreateFreeTimer)
	sess.DELETE("/free-timers/:id", sessionHandler.DeleteFreeTimer)

	goals := authed.Group("/goals")
	goals.GET("", goalHandler.List)
	goals.POST("", goalHandler.Create)
	goals.PUT("/:id", goalHandler.Update)
	goals.DELETE("/:id", goalHandler.Delete)

	subjects := authed.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.POST("", subjectHandler.Import)
	subjects.PUT("/:id", subjectHandler.UpdateSubject)
	subjects.DELETE("/:id", subjectHandler.DeleteSubject)
	subjects.PUT("/:id/topics/:topicId", subjectHandler.UpdateTopic)
	subjects.DELETE("/:id/topics/:topicId", subjectHandler.DeleteTopic)
	subjects.POST("/:id/topics/:topicId/records", subjectHandler.AddRecord)

	authed.GET("/performance", subjectHandler.Performance)

	simulados := authed.Group("/simulados")
	simulados.GET("", simuladoHandler.List)
	simulados.POST("", simuladoHandler.Create)
	simulados.PUT("/:id", simuladoHandler.Update)
	simulados.DELETE("/:id", simuladoHandler.Delete)

	return engine
}
