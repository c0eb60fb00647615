package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

func (s *pgStore) GetContentByID(id int) (model.Content, error) {
	var c model.Content
	const q = `
	SELECT id, name, type, url, duration, created_at
	  FROM content
	 WHERE id = $1;`
	if err := s.db.Get(&c, q, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("content_id", id).Msg("failed to get content by id")
		}
		return model.Content{}, err
	}
	return c, nil
}
