package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/tv/packets"
	"github.com/roomcast/roomcast/internal/model"
	syncpkg "github.com/roomcast/roomcast/internal/sync"
)

type SyncController struct {
	store db.Store
	coord *syncpkg.Coordinator
}

func newSyncController(store db.Store, coord *syncpkg.Coordinator) *SyncController {
	return &SyncController{store: store, coord: coord}
}

// SyncModule mounts the device-side sync reporting endpoints.
func SyncModule(store db.Store, coord *syncpkg.Coordinator) api.Module {
	ctl := newSyncController(store, coord)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/sync/heartbeat", ctl.heartbeat)
		c.PUBLIC_POST("/sync/position", ctl.reportPosition)
		c.PUBLIC_POST("/sync/request", ctl.requestSync)
	})
}

// POST /api/tv/sync/heartbeat
func (s *SyncController) heartbeat(ctx *gin.Context) (any, *api.APIError) {
	var request packets.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, apiErr := s.displayForDevice(request.DeviceID)
	if apiErr != nil {
		return nil, apiErr
	}

	s.coord.Heartbeat(display.ID)
	return gin.H{"ok": true}, nil
}

// POST /api/tv/sync/position
func (s *SyncController) reportPosition(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PositionReportRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, apiErr := s.displayForDevice(request.DeviceID)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := s.coord.ReportPosition(request.GroupID, display.ID, request.CurrentTime); err != nil {
		return nil, translateDeviceSyncError(err)
	}
	return gin.H{"ok": true}, nil
}

// POST /api/tv/sync/request answers with one immediate tick over the
// realtime channel instead of waiting for the next period.
func (s *SyncController) requestSync(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RequestSyncRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, apiErr := s.displayForDevice(request.DeviceID)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := s.coord.Broadcaster().SendSyncState(request.GroupID, display.ID); err != nil {
		return nil, translateDeviceSyncError(err)
	}
	return gin.H{"ok": true}, nil
}

func (s *SyncController) displayForDevice(deviceID string) (model.Display, *api.APIError) {
	display, err := s.store.GetDisplayByDeviceID(&deviceID)
	if err != nil {
		log.Warn().Err(err).Str("device_id", deviceID).Msg("sync report from unknown device")
		return model.Display{}, &api.APIError{Code: http.StatusUnauthorized, Message: "unauthorized device"}
	}
	return display, nil
}

func translateDeviceSyncError(err error) *api.APIError {
	switch err {
	case syncpkg.ErrGroupNotFound:
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	case syncpkg.ErrDisplayNotInGroup:
		return &api.APIError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}
