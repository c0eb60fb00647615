package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/db"
	"github.com/roomcast/roomcast/internal/http/api"
	"github.com/roomcast/roomcast/internal/http/api/admin/control/packets"
	"github.com/roomcast/roomcast/internal/model"
)

type AlertController struct {
	store db.Store
}

func newAlertController(store db.Store) *AlertController {
	return &AlertController{store: store}
}

// AlertModule mounts all authenticated /alerts endpoints.
func AlertModule(store db.Store) api.Module {
	ctl := newAlertController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/alerts", ctl.listAlerts)
		c.POST("/alerts", ctl.createAlert)
		c.PUT("/alerts/:id", ctl.updateAlert)
		c.DELETE("/alerts/:id", ctl.deactivateAlert)
	})
}

// GET /api/admin/alerts?hotel_id=N
func (a *AlertController) listAlerts(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	hotelID, err := strconv.Atoi(ctx.Query("hotel_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "hotel_id query parameter is required"}
	}

	alerts, err := a.store.ListAlerts(hotelID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list alerts"}
	}

	out := make([]packets.AlertResponse, 0, len(alerts))
	for _, al := range alerts {
		out = append(out, packets.NewAlertResponse(al))
	}
	return out, nil
}

// POST /api/admin/alerts
func (a *AlertController) createAlert(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateAlertRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	// an alert targets the hotel, one area, or one display, never several
	if request.AreaID != nil && request.DisplayID != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "alert scope cannot name both an area and a display"}
	}

	startAt := time.Now()
	if request.StartAt != nil {
		startAt = *request.StartAt
	}

	alert, err := a.store.CreateAlert(model.Alert{
		HotelID:   request.HotelID,
		AreaID:    request.AreaID,
		DisplayID: request.DisplayID,
		Type:      request.Type,
		Priority:  request.Priority,
		ContentID: request.ContentID,
		IsActive:  true,
		StartAt:   startAt,
		EndAt:     request.EndAt,
		CreatedBy: user.ID,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create alert"}
	}

	log.Info().Int("alert_id", alert.ID).Str("type", alert.Type).Int("priority", alert.Priority).
		Msg("alert created")
	return packets.NewAlertResponse(alert), nil
}

// PUT /api/admin/alerts/:id
func (a *AlertController) updateAlert(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid alert id"}
	}
	var request packets.UpdateAlertRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := a.store.UpdateAlert(id, request.IsActive, request.Priority, request.EndAt); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update alert"}
	}
	return gin.H{"updated": id}, nil
}

// DELETE /api/admin/alerts/:id deactivates rather than deletes, so the
// audit trail keeps the record.
func (a *AlertController) deactivateAlert(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid alert id"}
	}

	inactive := false
	if err := a.store.UpdateAlert(id, &inactive, nil, nil); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not deactivate alert"}
	}
	return gin.H{"deactivated": id}, nil
}
