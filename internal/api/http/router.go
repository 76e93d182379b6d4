package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nqh2610/lophoconline-sub002/internal/config"
)

func SetupRouter(signaling *SignalingController, events *EventsController, admin *AdminController, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
		adminTokenHeader,
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if signaling != nil {
		api.POST("/signaling", signaling.Signal)
		api.GET("/signaling/peers", signaling.ListPeers)
	}

	if events != nil {
		api.GET("/signaling/events", events.Stream)
		api.GET("/signaling/ws", events.StreamWebSocket)
	}

	api.GET("/webrtc/config", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"iceServers": []gin.H{{"urls": cfg.WebRTC.STUNServers}},
		})
	})

	if admin != nil && admin.Enabled() {
		adm := api.Group("/admin", admin.Authorize)
		adm.GET("/rooms", admin.ListRooms)
		adm.POST("/reset", admin.Reset)
	}

	return router
}
