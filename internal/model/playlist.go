package model

import "time"

// PlaylistItem is one entry of a display's default rotation. Order is
// unique per display and defines the cycle sequence; the optional
// start/end window limits when the item is eligible.
type PlaylistItem struct {
	ID        int        `db:"id"           json:"id"`
	DisplayID int        `db:"display_id"   json:"display_id"`
	ContentID int        `db:"content_id"   json:"content_id"`
	Position  int        `db:"position"     json:"position"`
	Duration  *int       `db:"duration"     json:"duration,omitempty"`
	StartTime *time.Time `db:"start_time"   json:"start_time,omitempty"`
	EndTime   *time.Time `db:"end_time"     json:"end_time,omitempty"`
	CreatedAt time.Time  `db:"created_at"   json:"created_at"`
	CreatedBy int        `db:"created_by"   json:"created_by"`
	Content   *Content   `db:"-"            json:"content,omitempty"`
}

// EligibleAt reports whether the item's optional time window covers now.
func (p PlaylistItem) EligibleAt(now time.Time) bool {
	if p.StartTime != nil && p.StartTime.After(now) {
		return false
	}
	if p.EndTime != nil && !p.EndTime.After(now) {
		return false
	}
	return true
}
