package packets

import "github.com/roomcast/roomcast/internal/resolver"

// RESPONSES FOR /api/tv/*

// DisplayResponse mirrors model.Display but flattens times to RFC3339.
type DisplayResponse struct {
	ID        int     `json:"id"`
	DeviceID  *string `json:"device_id"`
	Name      string  `json:"name"`
	Location  *string `json:"location"`
	Paired    bool    `json:"paired"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ResolvedContentResponse is the wire form of a resolver result. Exactly
// one of the id fields besides priority/reason is set depending on type.
type ResolvedContentResponse struct {
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Reason      string `json:"reason"`
	ContentID   *int   `json:"content_id,omitempty"`
	AlertID     *int   `json:"alert_id,omitempty"`
	SyncGroupID *int   `json:"sync_group_id,omitempty"`
	ScheduleID  *int   `json:"schedule_id,omitempty"`
}

// NewResolvedContentResponse flattens the resolution sum for JSON. The
// switch is exhaustive over the sealed variants.
func NewResolvedContentResponse(res resolver.Resolution) ResolvedContentResponse {
	out := ResolvedContentResponse{
		Type:     string(res.Type()),
		Priority: res.Priority(),
		Reason:   res.Reason(),
	}
	switch v := res.(type) {
	case resolver.AlertContent:
		out.AlertID = &v.AlertID
		out.ContentID = &v.ContentID
	case resolver.SyncContent:
		out.SyncGroupID = &v.GroupID
		out.ContentID = v.ContentID
	case resolver.ScheduledContent:
		out.ScheduleID = &v.ScheduleID
		out.ContentID = &v.ContentID
	case resolver.PlaylistContent:
		// the runtime advances through its playlist items itself
	case resolver.FallbackContent:
		out.ContentID = &v.ContentID
	case resolver.NoContent:
	}
	return out
}
