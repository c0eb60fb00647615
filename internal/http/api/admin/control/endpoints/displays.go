package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/admin/control/packets"
	"github.com/roomcast/roomcast/internal/model"
)

type DisplayController struct {
	store db.Store
}

func newDisplayController(store db.Store) *DisplayController {
	return &DisplayController{store: store}
}

// DisplayModule mounts all authenticated /displays endpoints.
func DisplayModule(store db.Store) api.Module {
	ctl := newDisplayController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays", ctl.listDisplays)
		c.POST("/displays", ctl.createDisplay)
		c.GET("/displays/:id", ctl.getDisplay)
		c.PUT("/displays/:id", ctl.updateDisplay)
		c.PUT("/displays/:id/fallback", ctl.setFallbackContent)
		c.DELETE("/displays/:id", ctl.deleteDisplay)
	})
}

// GET /api/admin/displays
func (t *DisplayController) listDisplays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.store.ListDisplays()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	out := make([]packets.DisplayResponse, 0, len(all))
	for _, d := range all {
		out = append(out, packets.NewDisplayResponse(d))
	}
	return out, nil
}

// POST /api/admin/displays
func (t *DisplayController) createDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, err := t.store.CreateDisplay(request.HotelID, request.AreaID, request.Name, request.Location, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create display"}
	}
	return packets.NewDisplayResponse(display), nil
}

// GET /api/admin/displays/:id
func (t *DisplayController) getDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		log.Error().Err(err).Str("id_raw", ctx.Param("id")).Msg("invalid id in request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	display, err := t.store.GetDisplayByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}
	return packets.NewDisplayResponse(display), nil
}

// PUT /api/admin/displays/:id
func (t *DisplayController) updateDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateDisplayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := t.store.UpdateDisplay(id, request.Name, request.Location, request.AreaID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update display"}
	}

	display, err := t.store.GetDisplayByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "display not found"}
	}
	return packets.NewDisplayResponse(display), nil
}

// PUT /api/admin/displays/:id/fallback
func (t *DisplayController) setFallbackContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.SetFallbackContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := t.store.SetDisplayFallbackContent(id, request.ContentID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set fallback content"}
	}
	return gin.H{"display_id": id, "fallback_content_id": request.ContentID}, nil
}

// DELETE /api/admin/displays/:id
func (t *DisplayController) deleteDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	if err := t.store.DeleteDisplay(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete display"}
	}
	return gin.H{"deleted": id}, nil
}
