package db

import (
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

// ListPlaylistItemsForDisplay returns the display's rotation in cycle
// order. Time-window eligibility is the caller's concern.
func (s *pgStore) ListPlaylistItemsForDisplay(displayID int) ([]model.PlaylistItem, error) {
	var items []model.PlaylistItem
	const q = `
	SELECT id, display_id, content_id, position, duration, start_time, end_time,
	       created_at, created_by
	  FROM playlist_items
	 WHERE display_id = $1
	 ORDER BY position;`
	if err := s.db.Select(&items, q, displayID); err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to list playlist items")
		return nil, err
	}

	for i := range items {
		content, err := s.GetContentByID(items[i].ContentID)
		if err != nil {
			log.Error().Err(err).Int("content_id", items[i].ContentID).
				Msg("failed to load content for playlist item")
			continue
		}
		items[i].Content = &content
	}
	return items, nil
}
