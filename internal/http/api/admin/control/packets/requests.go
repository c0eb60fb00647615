package packets

import (
	"time"

	"github.com/roomcast/roomcast/internal/sync"
)

type CreateDisplayRequest struct {
	HotelID  int     `json:"hotel_id" binding:"required"`
	AreaID   *int    `json:"area_id"`
	Name     string  `json:"name" binding:"required"`
	Location *string `json:"location"`
}

type UpdateDisplayRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	AreaID   *int    `json:"area_id"`
}

type SetFallbackContentRequest struct {
	ContentID *int `json:"content_id"` // null clears the fallback
}

type CreateAlertRequest struct {
	HotelID   int        `json:"hotel_id" binding:"required"`
	AreaID    *int       `json:"area_id"`
	DisplayID *int       `json:"display_id"`
	Type      string     `json:"type" binding:"required"`
	Priority  int        `json:"priority" binding:"required,min=1,max=999"`
	ContentID int        `json:"content_id" binding:"required"`
	StartAt   *time.Time `json:"start_at"` // defaults to now
	EndAt     *time.Time `json:"end_at"`
}

type UpdateAlertRequest struct {
	IsActive *bool      `json:"is_active"`
	Priority *int       `json:"priority" binding:"omitempty,min=1,max=999"`
	EndAt    *time.Time `json:"end_at"`
}

type CreateSyncGroupRequest struct {
	HotelID int    `json:"hotel_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

type ModifyGroupMembershipRequest struct {
	DisplayID int `json:"display_id" binding:"required"`
}

// GroupCommandRequest mirrors sync.Command minus the group id, which
// comes from the URL.
type GroupCommandRequest struct {
	Type      sync.CommandType `json:"type" binding:"required"`
	ContentID *int             `json:"content_id"`
	SeekTo    *float64         `json:"seek_to"`
	Timestamp time.Time        `json:"timestamp" binding:"required"`
}

type AssignConductorRequest struct {
	DisplayID int    `json:"display_id" binding:"required"`
	SocketID  string `json:"socket_id"`
}
