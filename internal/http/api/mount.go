package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/http/middleware"
)

// Module is one feature's slice of the HTTP surface (displays, alerts,
// sync groups, pairing). A module attaches its routes to the Controller
// it is mounted on and stays ignorant of which surface that is.
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc adapts a plain function into a Module.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// GroupConfig describes one mounted surface. The server has two: the
// operator console under /api/admin (JWT-guarded) and the display
// surface under /api/tv (open; displays identify by device id).
type GroupConfig struct {
	Prefix     string
	Auth       bool
	SecretKey  string            // required when Auth is set
	Middleware []gin.HandlerFunc // runs before the auth guard
}

// MountGroup attaches the given modules under one route group,
// installing the group's middleware chain first. Misconfiguration is
// fatal at startup rather than a silent open surface.
func MountGroup(parent gin.IRoutes, cfg GroupConfig, modules ...Module) {
	var grp *gin.RouterGroup

	switch v := parent.(type) {
	case *gin.Engine:
		grp = v.Group(cfg.Prefix)
	case *gin.RouterGroup:
		if cfg.Prefix != "" {
			grp = v.Group(cfg.Prefix)
		} else {
			grp = v
		}
	default:
		log.Fatal().Str("type", fmt.Sprintf("%T", parent)).Msg("api.MountGroup: unsupported router type")
	}

	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}
	if cfg.Auth {
		if cfg.SecretKey == "" {
			log.Fatal().Msg("api.MountGroup: Auth enabled but SecretKey is empty")
		}
		grp.Use(middleware.JWTMiddleware(cfg.SecretKey))
	}

	controller := &Controller{Group: grp}
	for _, m := range modules {
		m.Mount(controller)
	}
}
