package packets

import (
	"time"

	"github.com/roomcast/roomcast/internal/model"
)

// DisplayResponse mirrors model.Display but flattens times to RFC3339.
type DisplayResponse struct {
	ID                int     `json:"id"`
	HotelID           int     `json:"hotel_id"`
	AreaID            *int    `json:"area_id,omitempty"`
	DeviceID          *string `json:"device_id"`
	Name              string  `json:"name"`
	Location          *string `json:"location,omitempty"`
	FallbackContentID *int    `json:"fallback_content_id,omitempty"`
	Paired            bool    `json:"paired"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func NewDisplayResponse(d model.Display) DisplayResponse {
	return DisplayResponse{
		ID:                d.ID,
		HotelID:           d.HotelID,
		AreaID:            d.AreaID,
		DeviceID:          d.DeviceID,
		Name:              d.Name,
		Location:          d.Location,
		FallbackContentID: d.FallbackContentID,
		Paired:            d.Paired,
		CreatedAt:         d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.Format(time.RFC3339),
	}
}

type AlertResponse struct {
	ID        int     `json:"id"`
	HotelID   int     `json:"hotel_id"`
	AreaID    *int    `json:"area_id,omitempty"`
	DisplayID *int    `json:"display_id,omitempty"`
	Type      string  `json:"type"`
	Priority  int     `json:"priority"`
	ContentID int     `json:"content_id"`
	IsActive  bool    `json:"is_active"`
	StartAt   string  `json:"start_at"`
	EndAt     *string `json:"end_at,omitempty"`
}

func NewAlertResponse(a model.Alert) AlertResponse {
	out := AlertResponse{
		ID:        a.ID,
		HotelID:   a.HotelID,
		AreaID:    a.AreaID,
		DisplayID: a.DisplayID,
		Type:      a.Type,
		Priority:  a.Priority,
		ContentID: a.ContentID,
		IsActive:  a.IsActive,
		StartAt:   a.StartAt.Format(time.RFC3339),
	}
	if a.EndAt != nil {
		formatted := a.EndAt.Format(time.RFC3339)
		out.EndAt = &formatted
	}
	return out
}

// SyncGroupResponse is the admin-facing group snapshot.
type SyncGroupResponse struct {
	ID               int                   `json:"id"`
	HotelID          int                   `json:"hotel_id"`
	Name             string                `json:"name"`
	State            string                `json:"state"`
	ConductorID      *int                  `json:"conductor_id,omitempty"`
	CurrentContentID *int                  `json:"current_content_id,omitempty"`
	CurrentTime      float64               `json:"current_time"`
	StartedAt        *string               `json:"started_at,omitempty"`
	PlaylistIndex    int                   `json:"playlist_index"`
	Members          []int                 `json:"members"`
	Items            []model.SyncGroupItem `json:"items,omitempty"`
}

func NewSyncGroupResponse(g model.SyncGroup) SyncGroupResponse {
	out := SyncGroupResponse{
		ID:               g.ID,
		HotelID:          g.HotelID,
		Name:             g.Name,
		State:            string(g.State),
		ConductorID:      g.ConductorID,
		CurrentContentID: g.CurrentContentID,
		CurrentTime:      g.CurrentTime,
		PlaylistIndex:    g.PlaylistIndex,
		Members:          g.Members,
		Items:            g.Items,
	}
	if g.StartedAt != nil {
		formatted := g.StartedAt.Format(time.RFC3339Nano)
		out.StartedAt = &formatted
	}
	return out
}
