package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/tv/packets"
	"github.com/roomcast/roomcast/internal/realtime"
	"github.com/roomcast/roomcast/internal/redis"
)

type PairingController struct {
	store   db.Store
	channel *realtime.MQTTChannel
}

func newPairingController(store db.Store, channel *realtime.MQTTChannel) *PairingController {
	return &PairingController{store: store, channel: channel}
}

// PairingModule mounts the unauthenticated device-side endpoints.
func PairingModule(store db.Store, channel *realtime.MQTTChannel) api.Module {
	ctl := newPairingController(store, channel)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/register", ctl.registerPairingCode)
		c.PUBLIC_POST("/connect", ctl.connectDevice)
	})
}

// registerPairingCode checks that the device isn't already paired, stores
// the pairing code in Redis, and responds with the device ID.
func (t *PairingController) registerPairingCode(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterPairingCodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, err := t.store.GetDisplayByDeviceID(&request.DeviceID)
	if err == nil && display.Paired {
		log.Warn().Str("device_id", request.DeviceID).Msg("display is already paired")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "display is already paired"}
	}

	redis.Set(ctx, "pairing:"+request.PairingCode, request.DeviceID, 0)

	return gin.H{"device_id": request.DeviceID}, nil
}

// connectDevice announces a paired device on the realtime channel so
// ticks and commands can reach it.
func (t *PairingController) connectDevice(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ConnectRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	display, err := t.store.GetDisplayByDeviceID(&request.DeviceID)
	if err != nil {
		log.Warn().Err(err).Str("device_id", request.DeviceID).Msg("unknown device tried to connect")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "unauthorized device"}
	}

	t.channel.RegisterDisplay(display.ID, request.DeviceID)
	log.Info().Int("display_id", display.ID).Str("device_id", request.DeviceID).Msg("device connected")
	return gin.H{"display_id": display.ID}, nil
}
