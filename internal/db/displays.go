package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

const displayColumns = `
	id, hotel_id, area_id, device_id, name, location, fallback_content_id,
	paired, created_at, updated_at`

func (s *pgStore) ListDisplays() ([]model.Display, error) {
	var displays []model.Display
	err := s.db.Select(&displays, `
		SELECT `+displayColumns+`
		FROM displays
		ORDER BY id
		`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list displays")
	}
	return displays, err
}

func (s *pgStore) GetDisplayByID(id int) (model.Display, error) {
	var display model.Display
	err := s.db.Get(&display, `
		SELECT `+displayColumns+`
		FROM displays
		WHERE id = $1
		`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Int("display_id", id).Msg("failed to get display by id")
	}
	return display, err
}

func (s *pgStore) GetDisplayByDeviceID(deviceID *string) (model.Display, error) {
	var display model.Display
	err := s.db.Get(&display, `
		SELECT `+displayColumns+`
		FROM displays
		WHERE device_id = $1
		`, deviceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Msg("failed to get display by device id")
	}
	return display, err
}

func (s *pgStore) CreateDisplay(hotelID int, areaID *int, name string, location *string, createdBy int) (model.Display, error) {
	var d model.Display
	q := `
	INSERT INTO displays (hotel_id, area_id, name, location, paired, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, false, $5, now(), now())
	RETURNING ` + displayColumns + `;`
	if err := s.db.Get(&d, q, hotelID, areaID, name, location, createdBy); err != nil {
		log.Error().Err(err).Msg("failed to create display")
		return model.Display{}, err
	}
	return d, nil
}

func (s *pgStore) UpdateDisplay(id int, name, location *string, areaID *int) error {
	_, err := s.db.Exec(`
		UPDATE displays
		SET name = COALESCE($2, name),
		location = COALESCE($3, location),
		area_id = COALESCE($4, area_id),
		updated_at = now()
		WHERE id = $1
		`, id, name, location, areaID)
	if err != nil {
		log.Error().Err(err).Int("display_id", id).Msg("failed to update display")
	}
	return err
}

// SetDisplayFallbackContent sets or clears a display's fallback content.
func (s *pgStore) SetDisplayFallbackContent(id int, contentID *int) error {
	_, err := s.db.Exec(`
		UPDATE displays
		SET fallback_content_id = $2,
		updated_at = now()
		WHERE id = $1
		`, id, contentID)
	if err != nil {
		log.Error().Err(err).Int("display_id", id).Msg("failed to set fallback content")
	}
	return err
}

func (s *pgStore) PairDisplay(id int) error {
	_, err := s.db.Exec(`
		UPDATE displays
		SET paired = TRUE,
		updated_at = now()
		WHERE id = $1
		`, id)
	if err != nil {
		log.Error().Err(err).Int("display_id", id).Msg("failed to pair display")
	}
	return err
}

func (s *pgStore) AssignDeviceIDToDisplay(displayID int, deviceID *string) error {
	_, err := s.db.Exec(`
		UPDATE displays
		SET device_id = COALESCE($2, device_id),
		updated_at = now()
		WHERE id = $1
		`, displayID, deviceID)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to assign device ID to display")
	}
	return err
}

func (s *pgStore) DeleteDisplay(id int) error {
	_, err := s.db.Exec(`DELETE FROM displays WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("display_id", id).Msg("failed to delete display")
	}
	return err
}
