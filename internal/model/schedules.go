package model

import "time"

type Schedule struct {
	ID        int       `db:"id" json:"id"`
	HotelID   int       `db:"hotel_id" json:"hotel_id"`
	AreaID    *int      `db:"area_id" json:"area_id,omitempty"`
	DisplayID *int      `db:"display_id" json:"display_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Windows []ScheduleWindow `db:"-" json:"windows,omitempty"`
}

// ScheduleWindow is one recurring or one-shot activation window of a
// schedule. Recurrence is evaluated by the schedule package; the rest of
// the core treats it as opaque.
type ScheduleWindow struct {
	ID         int        `db:"id" json:"id"`
	ScheduleID int        `db:"schedule_id" json:"schedule_id"`
	ContentID  int        `db:"content_id" json:"content_id"`
	Start      time.Time  `db:"start_ts" json:"start"`
	End        time.Time  `db:"end_ts" json:"end"`
	Recurrence string     `db:"recurrence" json:"recurrence"`
	RecurUntil *time.Time `db:"recur_until" json:"recur_until,omitempty"`
	Priority   int        `db:"priority" json:"priority"`
	Enabled    bool       `db:"enabled" json:"enabled"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
