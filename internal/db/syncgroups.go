package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

const syncGroupColumns = `
	id, hotel_id, name, state, conductor_id, current_content_id,
	current_time_sec AS "current_time", started_at, playlist_index,
	created_by, created_at, updated_at`

func (s *pgStore) CreateSyncGroup(hotelID int, name string, createdBy int) (model.SyncGroup, error) {
	var g model.SyncGroup
	if name == "" {
		return g, fmt.Errorf("group name is required")
	}
	err := s.db.Get(&g, `
		INSERT INTO sync_groups (hotel_id, name, state, created_by)
		VALUES ($1, $2, 'IDLE', $3)
		RETURNING `+syncGroupColumns+`
	`, hotelID, name, createdBy)
	if err != nil {
		log.Error().Err(err).Msg("failed to create sync group")
	}
	return g, err
}

func (s *pgStore) GetSyncGroupByID(groupID int) (model.SyncGroup, error) {
	var g model.SyncGroup
	err := s.db.Get(&g, `
		SELECT `+syncGroupColumns+`
		  FROM sync_groups
		 WHERE id = $1
	`, groupID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("group_id", groupID).Msg("failed to get sync group")
		}
		return g, err
	}
	if g.Members, err = s.listSyncGroupMembers(groupID); err != nil {
		return g, err
	}
	if g.Items, err = s.listSyncGroupItems(groupID); err != nil {
		return g, err
	}
	return g, nil
}

func (s *pgStore) ListSyncGroups() ([]model.SyncGroup, error) {
	var groups []model.SyncGroup
	err := s.db.Select(&groups, `
		SELECT `+syncGroupColumns+`
		  FROM sync_groups
		 ORDER BY id
	`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sync groups")
		return nil, err
	}
	for i := range groups {
		if groups[i].Members, err = s.listSyncGroupMembers(groups[i].ID); err != nil {
			return nil, err
		}
		if groups[i].Items, err = s.listSyncGroupItems(groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *pgStore) DeleteSyncGroup(groupID int) error {
	res, err := s.db.Exec(`DELETE FROM sync_groups WHERE id = $1`, groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to delete sync group")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddDisplayToSyncGroup inserts membership. A display may only belong to
// one group that is not STOPPED, enforced here before the insert.
func (s *pgStore) AddDisplayToSyncGroup(groupID, displayID int) error {
	var conflicting int
	err := s.db.Get(&conflicting, `
		SELECT COUNT(*)
		  FROM sync_group_members m
		  JOIN sync_groups g ON g.id = m.group_id
		 WHERE m.display_id = $1
		   AND g.id <> $2
		   AND g.state <> 'STOPPED'
	`, displayID, groupID)
	if err != nil {
		return err
	}
	if conflicting > 0 {
		return fmt.Errorf("display %d already belongs to an active sync group", displayID)
	}

	_, err = s.db.Exec(`
		INSERT INTO sync_group_members (group_id, display_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, groupID, displayID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Int("display_id", displayID).
			Msg("failed to add display to sync group")
	}
	return err
}

func (s *pgStore) RemoveDisplayFromSyncGroup(groupID, displayID int) error {
	res, err := s.db.Exec(`
		DELETE FROM sync_group_members
		 WHERE group_id = $1 AND display_id = $2
	`, groupID, displayID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveSyncGroupState persists the mutable playback fields of a group
// snapshot. Called by the coordinator outside its per-group lock.
func (s *pgStore) SaveSyncGroupState(g model.SyncGroup) error {
	_, err := s.db.Exec(`
		UPDATE sync_groups
		   SET state              = $2,
		       conductor_id       = $3,
		       current_content_id = $4,
		       current_time_sec   = $5,
		       started_at         = $6,
		       playlist_index     = $7,
		       updated_at         = now()
		 WHERE id = $1
	`, g.ID, g.State, g.ConductorID, g.CurrentContentID, g.CurrentTime, g.StartedAt, g.PlaylistIndex)
	if err != nil {
		log.Error().Err(err).Int("group_id", g.ID).Msg("failed to save sync group state")
	}
	return err
}

// GetActiveSyncMembership returns the non-STOPPED group the display belongs
// to, or nil if it has none.
func (s *pgStore) GetActiveSyncMembership(displayID int) (*model.SyncGroup, error) {
	var g model.SyncGroup
	err := s.db.Get(&g, `
		SELECT `+syncGroupColumns+`
		  FROM sync_groups g
		 WHERE g.state <> 'STOPPED'
		   AND EXISTS (
			SELECT 1 FROM sync_group_members m
			 WHERE m.group_id = g.id AND m.display_id = $1
		   )
		 ORDER BY g.id
		 LIMIT 1
	`, displayID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to get sync membership")
		return nil, err
	}
	if g.Members, err = s.listSyncGroupMembers(g.ID); err != nil {
		return nil, err
	}
	if g.Items, err = s.listSyncGroupItems(g.ID); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *pgStore) listSyncGroupMembers(groupID int) ([]int, error) {
	var ids []int
	err := s.db.Select(&ids, `
		SELECT display_id
		  FROM sync_group_members
		 WHERE group_id = $1
		 ORDER BY display_id
	`, groupID)
	return ids, err
}

func (s *pgStore) listSyncGroupItems(groupID int) ([]model.SyncGroupItem, error) {
	var items []model.SyncGroupItem
	err := s.db.Select(&items, `
		SELECT id, group_id, content_id, position, duration
		  FROM sync_group_items
		 WHERE group_id = $1
		 ORDER BY position
	`, groupID)
	return items, err
}
