package sync

import (
	"time"

	"github.com/roomcast/roomcast/internal/model"
)

// AssignReason explains why a conductor changed.
type AssignReason string

const (
	ReasonManual   AssignReason = "manual"
	ReasonElected  AssignReason = "elected"
	ReasonFailover AssignReason = "failover"
)

// Tick is the periodic authoritative playback position broadcast to every
// member of a playing group. Receivers compute their clock offset from
// ServerTime and reconcile local playback toward CurrentTime.
type Tick struct {
	GroupID       int                 `json:"group_id"`
	ContentID     *int                `json:"content_id,omitempty"`
	CurrentTime   float64             `json:"current_time"`
	ServerTime    time.Time           `json:"server_time"`
	PlaybackState model.PlaybackState `json:"playback_state"`
}

// Channel delivers messages to a single display. Delivery is best-effort:
// a failed send must not affect other recipients.
type Channel interface {
	SendToDisplay(displayID int, message any) error
}

// Presence answers which displays are currently connected, used by
// conductor election.
type Presence interface {
	Touch(displayID int, now time.Time)
	Connected(displayIDs []int) []int
}

// EventSink receives coordinator lifecycle events. Implementations fan
// them out to admin dashboards and group members.
type EventSink interface {
	GroupUpdated(g model.SyncGroup, at time.Time)
	ConductorRevoked(groupID, displayID int, reason AssignReason, at time.Time)
	ConductorAssigned(groupID, displayID int, reason AssignReason, at time.Time)
	CommandApplied(groupID int, cmd Command, at time.Time)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) GroupUpdated(model.SyncGroup, time.Time)             {}
func (NopSink) ConductorRevoked(int, int, AssignReason, time.Time)  {}
func (NopSink) ConductorAssigned(int, int, AssignReason, time.Time) {}
func (NopSink) CommandApplied(int, Command, time.Time)              {}
