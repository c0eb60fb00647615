package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	authapi "github.com/roomcast/roomcast/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/roomcast/roomcast/internal/http/api/admin/control/endpoints"
	clientapi "github.com/roomcast/roomcast/internal/http/api/tv/endpoints"
	"github.com/roomcast/roomcast/internal/realtime"
	"github.com/roomcast/roomcast/internal/resolver"
	syncpkg "github.com/roomcast/roomcast/internal/sync"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	coord *syncpkg.Coordinator,
	router *syncpkg.Router,
	res *resolver.Resolver,
	channel *realtime.MQTTChannel,
	hub *realtime.Hub,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
	},
		// control modules
		adminapi.DisplayModule(store),
		adminapi.AlertModule(store),
		adminapi.SyncGroupModule(store, coord, router),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, store),
		// live event feed for dashboards
		api.ModuleFunc(func(c *api.Controller) {
			c.RAW_GET("/ws", func(ctx *gin.Context) {
				hub.ServeWS(ctx.Writer, ctx.Request)
			})
		}),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		clientapi.PairingModule(store, channel),
		clientapi.SyncModule(store, coord),
		clientapi.ContentModule(store, res),
	)
}
