package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/tv/packets"
	"github.com/roomcast/roomcast/internal/resolver"
)

type ContentController struct {
	store    db.Store
	resolver *resolver.Resolver
}

func newContentController(store db.Store, res *resolver.Resolver) *ContentController {
	return &ContentController{store: store, resolver: res}
}

// ContentModule mounts the device-side content resolution endpoint.
func ContentModule(store db.Store, res *resolver.Resolver) api.Module {
	ctl := newContentController(store, res)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/content", ctl.resolveContent)
	})
}

// GET /api/tv/content?device_id=...
//
// Displays poll this (and call it on every heartbeat cycle) to learn what
// they must show. Resolution never fails: unknown devices get the none
// variant, same as unknown displays.
func (c *ContentController) resolveContent(ctx *gin.Context) (any, *api.APIError) {
	deviceID := ctx.Query("device_id")
	if deviceID == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "device_id query parameter is required"}
	}

	display, err := c.store.GetDisplayByDeviceID(&deviceID)
	if err != nil {
		return packets.NewResolvedContentResponse(resolver.NoContent{Why: "Display not found"}), nil
	}

	res := c.resolver.Resolve(display.ID)
	return packets.NewResolvedContentResponse(res), nil
}
