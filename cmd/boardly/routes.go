package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	activityhandlers "github.com/dongwonkwak/boardly-sub001/internal/activity/handlers"
	boardhandlers "github.com/dongwonkwak/boardly-sub001/internal/board/handlers"
	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/httpmw"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

const serverName = "boardly-api"

func buildRouter(cfg *config.Config, log *logger.Logger, repos *Repositories, services *Services, eventBus bus.EventBus) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		corsMiddleware(),
		httpmw.RequestID(),
		httpmw.OtelTracing(serverName),
		httpmw.RequestLogger(log, serverName),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "boardly"})
	})

	auth := httpmw.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.DevHeader, log)
	api := router.Group("/api/v1", auth.Middleware())

	boardhandlers.RegisterBoardRoutes(api, services.Board, log)
	activityhandlers.RegisterActivityRoutes(api, services.Board, repos.Activity, eventBus, log)
	return router
}
