package model

import "time"

// PlaybackState is the lifecycle state of a sync group's playback.
type PlaybackState string

const (
	PlaybackIdle    PlaybackState = "IDLE"
	PlaybackPlaying PlaybackState = "PLAYING"
	PlaybackPaused  PlaybackState = "PAUSED"
	PlaybackStopped PlaybackState = "STOPPED"
)

// SyncGroup is a set of displays that must play identical content in
// lock-step. A display belongs to at most one group with non-STOPPED state.
type SyncGroup struct {
	ID               int           `db:"id"                 json:"id"`
	HotelID          int           `db:"hotel_id"           json:"hotel_id"`
	Name             string        `db:"name"               json:"name"`
	State            PlaybackState `db:"state"              json:"state"`
	ConductorID      *int          `db:"conductor_id"       json:"conductor_id,omitempty"`
	CurrentContentID *int          `db:"current_content_id" json:"current_content_id,omitempty"`
	CurrentTime      float64       `db:"current_time"       json:"current_time"`
	StartedAt        *time.Time    `db:"started_at"         json:"started_at,omitempty"`
	PlaylistIndex    int           `db:"playlist_index"     json:"playlist_index"`
	CreatedBy        int           `db:"created_by"         json:"created_by"`
	CreatedAt        time.Time     `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"         json:"updated_at"`

	Members []int           `db:"-" json:"members,omitempty"`
	Items   []SyncGroupItem `db:"-" json:"items,omitempty"`
}

// SyncGroupItem is one entry of a multi-item group's playback cycle.
type SyncGroupItem struct {
	ID        int  `db:"id"         json:"id"`
	GroupID   int  `db:"group_id"   json:"group_id"`
	ContentID int  `db:"content_id" json:"content_id"`
	Position  int  `db:"position"   json:"position"`
	Duration  *int `db:"duration"   json:"duration,omitempty"`
}

// HasMember reports whether displayID is part of the group.
func (g SyncGroup) HasMember(displayID int) bool {
	for _, id := range g.Members {
		if id == displayID {
			return true
		}
	}
	return false
}

// ConductorAssignment records which member currently acts as the group's
// playback timing reference.
type ConductorAssignment struct {
	GroupID       int       `json:"group_id"`
	DisplayID     int       `json:"display_id"`
	SocketID      string    `json:"socket_id"`
	AssignedAt    time.Time `json:"assigned_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}
