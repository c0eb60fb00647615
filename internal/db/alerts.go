package db

import (
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

const alertColumns = `
	id, hotel_id, area_id, display_id, type, priority, content_id,
	is_active, start_at, end_at, created_by, created_at, updated_at`

func (s *pgStore) CreateAlert(a model.Alert) (model.Alert, error) {
	var out model.Alert
	q := `
	INSERT INTO alerts
	(hotel_id, area_id, display_id, type, priority, content_id, is_active, start_at, end_at, created_by, created_at, updated_at)
	VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	RETURNING ` + alertColumns + `;`
	if err := s.db.Get(&out, q,
		a.HotelID, a.AreaID, a.DisplayID, a.Type, a.Priority, a.ContentID,
		a.IsActive, a.StartAt, a.EndAt, a.CreatedBy,
	); err != nil {
		log.Error().Err(err).Msg("failed to create alert")
		return model.Alert{}, err
	}
	return out, nil
}

func (s *pgStore) UpdateAlert(id int, isActive *bool, priority *int, endAt *time.Time) error {
	_, err := s.db.Exec(`
		UPDATE alerts
		SET is_active = COALESCE($2, is_active),
		priority = COALESCE($3, priority),
		end_at = COALESCE($4, end_at),
		updated_at = now()
		WHERE id = $1
		`, id, isActive, priority, endAt)
	if err != nil {
		log.Error().Err(err).Int("alert_id", id).Msg("failed to update alert")
	}
	return err
}

func (s *pgStore) ListAlerts(hotelID int) ([]model.Alert, error) {
	var alerts []model.Alert
	err := s.db.Select(&alerts, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE hotel_id = $1
		ORDER BY id
		`, hotelID)
	if err != nil {
		log.Error().Err(err).Int("hotel_id", hotelID).Msg("failed to list alerts")
	}
	return alerts, err
}

// ListActiveAlerts returns alerts whose activation window covers now and
// whose scope matches the display: display-specific, its area, or the
// hotel at large (no area/display set).
func (s *pgStore) ListActiveAlerts(displayID int, now time.Time) ([]model.Alert, error) {
	var alerts []model.Alert
	err := s.db.Select(&alerts, `
		SELECT `+alertColumns+`
		FROM alerts a
		WHERE a.is_active = TRUE
		  AND a.start_at <= $2
		  AND (a.end_at IS NULL OR a.end_at > $2)
		  AND EXISTS (
			SELECT 1 FROM displays d
			WHERE d.id = $1
			  AND d.hotel_id = a.hotel_id
			  AND (
				a.display_id = d.id
				OR (a.display_id IS NULL AND a.area_id IS NOT NULL AND a.area_id = d.area_id)
				OR (a.display_id IS NULL AND a.area_id IS NULL)
			  )
		  )
		ORDER BY a.priority DESC, a.start_at DESC
		`, displayID, now)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to list active alerts")
	}
	return alerts, err
}
