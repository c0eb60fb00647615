package model

import "time"

// AlertScope describes how broadly an alert applies. Exactly one of
// AreaID/DisplayID is set for area/display scopes; neither for hotel scope.
type AlertScope string

const (
	AlertScopeHotel   AlertScope = "hotel"
	AlertScopeArea    AlertScope = "area"
	AlertScopeDisplay AlertScope = "display"
)

type Alert struct {
	ID        int        `db:"id"          json:"id"`
	HotelID   int        `db:"hotel_id"    json:"hotel_id"`
	AreaID    *int       `db:"area_id"     json:"area_id,omitempty"`
	DisplayID *int       `db:"display_id"  json:"display_id,omitempty"`
	Type      string     `db:"type"        json:"type"`
	Priority  int        `db:"priority"    json:"priority"`
	ContentID int        `db:"content_id"  json:"content_id"`
	IsActive  bool       `db:"is_active"   json:"is_active"`
	StartAt   time.Time  `db:"start_at"    json:"start_at"`
	EndAt     *time.Time `db:"end_at"      json:"end_at,omitempty"`
	CreatedBy int        `db:"created_by"  json:"created_by"`
	CreatedAt time.Time  `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"  json:"updated_at"`
}

// Scope derives the alert's scope from which target columns are set.
func (a Alert) Scope() AlertScope {
	switch {
	case a.DisplayID != nil:
		return AlertScopeDisplay
	case a.AreaID != nil:
		return AlertScopeArea
	default:
		return AlertScopeHotel
	}
}

// ActiveAt reports whether the alert's time window covers now.
func (a Alert) ActiveAt(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartAt.After(now) {
		return false
	}
	if a.EndAt != nil && !a.EndAt.After(now) {
		return false
	}
	return true
}

// AppliesTo reports whether the alert's scope covers the given display.
func (a Alert) AppliesTo(d Display) bool {
	if a.HotelID != d.HotelID {
		return false
	}
	switch a.Scope() {
	case AlertScopeDisplay:
		return *a.DisplayID == d.ID
	case AlertScopeArea:
		return d.AreaID != nil && *a.AreaID == *d.AreaID
	default:
		return true
	}
}
