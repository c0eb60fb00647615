package db

import (
	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
)

// ListSchedulesForDisplay returns schedules whose scope covers the display
// (display-specific, its area, or hotel-wide), with their windows loaded.
// Window activation is evaluated by the schedule package, not here.
func (s *pgStore) ListSchedulesForDisplay(displayID int) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := s.db.Select(&schedules, `
		SELECT sc.id, sc.hotel_id, sc.area_id, sc.display_id, sc.name,
		       sc.created_by, sc.created_at, sc.updated_at
		  FROM schedules sc
		 WHERE EXISTS (
			SELECT 1 FROM displays d
			WHERE d.id = $1
			  AND d.hotel_id = sc.hotel_id
			  AND (
				sc.display_id = d.id
				OR (sc.display_id IS NULL AND sc.area_id IS NOT NULL AND sc.area_id = d.area_id)
				OR (sc.display_id IS NULL AND sc.area_id IS NULL)
			  )
		 )
		 ORDER BY sc.id
	`, displayID)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to list schedules for display")
		return nil, err
	}

	for i := range schedules {
		windows, err := s.listScheduleWindows(schedules[i].ID)
		if err != nil {
			log.Error().Err(err).Int("schedule_id", schedules[i].ID).Msg("failed to load schedule windows")
			return nil, err
		}
		schedules[i].Windows = windows
	}
	return schedules, nil
}

func (s *pgStore) listScheduleWindows(scheduleID int) ([]model.ScheduleWindow, error) {
	var windows []model.ScheduleWindow
	const q = `
	SELECT id, schedule_id, content_id, start_ts, end_ts, recurrence,
	       recur_until, priority, enabled, created_at, updated_at
	  FROM schedule_windows
	 WHERE schedule_id = $1
	   AND enabled = TRUE
	 ORDER BY start_ts;`
	if err := s.db.Select(&windows, q, scheduleID); err != nil {
		return nil, err
	}
	return windows, nil
}
