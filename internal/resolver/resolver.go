// Package resolver decides what a display must show right now by
// arbitrating between alerts, sync groups, schedules, playlists and
// fallback content. Resolution is a pure function of stored state and
// the clock: no side effects, safe under unbounded concurrent calls.
package resolver

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
	"github.com/roomcast/roomcast/internal/schedule"
)

// Queries is the narrow read contract the resolver needs from the
// persistence layer. db.Store satisfies it.
type Queries interface {
	GetDisplayByID(id int) (model.Display, error)
	ListActiveAlerts(displayID int, now time.Time) ([]model.Alert, error)
	GetActiveSyncMembership(displayID int) (*model.SyncGroup, error)
	ListSchedulesForDisplay(displayID int) ([]model.Schedule, error)
	ListPlaylistItemsForDisplay(displayID int) ([]model.PlaylistItem, error)
}

type Resolver struct {
	queries   Queries
	activator schedule.Activator
	now       func() time.Time
}

func New(queries Queries, activator schedule.Activator) *Resolver {
	return &Resolver{queries: queries, activator: activator, now: time.Now}
}

// WithClock replaces the wall clock, used by tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns exactly one content source for the display. It never
// returns an error: absence of content and unknown displays are results.
// Priority bands, highest wins:
// alert (>=1000) > sync (500) > schedule (>=100) > playlist (0) > fallback (-1) > none.
func (r *Resolver) Resolve(displayID int) Resolution {
	now := r.now()

	display, err := r.queries.GetDisplayByID(displayID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("display_id", displayID).Msg("resolver: display lookup failed")
		}
		return NoContent{Why: "Display not found"}
	}

	if res, ok := r.resolveAlert(display, now); ok {
		return res
	}
	if res, ok := r.resolveSync(display); ok {
		return res
	}
	if res, ok := r.resolveSchedule(display, now); ok {
		return res
	}
	if res, ok := r.resolvePlaylist(display, now); ok {
		return res
	}
	if display.FallbackContentID != nil {
		return FallbackContent{ContentID: *display.FallbackContentID}
	}
	return NoContent{Why: "No content assigned"}
}

func (r *Resolver) resolveAlert(display model.Display, now time.Time) (Resolution, bool) {
	alerts, err := r.queries.ListActiveAlerts(display.ID, now)
	if err != nil {
		log.Error().Err(err).Int("display_id", display.ID).Msg("resolver: alert query failed")
		return nil, false
	}

	var best *model.Alert
	for i := range alerts {
		a := alerts[i]
		if !a.ActiveAt(now) || !a.AppliesTo(display) {
			continue
		}
		if best == nil || alertBeats(a, *best) {
			best = &alerts[i]
		}
	}
	if best == nil {
		return nil, false
	}
	return AlertContent{
		AlertID:   best.ID,
		ContentID: best.ContentID,
		Score:     alertBand + best.Priority,
	}, true
}

// alertBeats orders candidate alerts: higher priority first, then more
// specific scope (display > area > hotel), then most recent start.
func alertBeats(a, b model.Alert) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if sa, sb := scopeRank(a), scopeRank(b); sa != sb {
		return sa > sb
	}
	return a.StartAt.After(b.StartAt)
}

func scopeRank(a model.Alert) int {
	switch a.Scope() {
	case model.AlertScopeDisplay:
		return 2
	case model.AlertScopeArea:
		return 1
	default:
		return 0
	}
}

func (r *Resolver) resolveSync(display model.Display) (Resolution, bool) {
	group, err := r.queries.GetActiveSyncMembership(display.ID)
	if err != nil {
		log.Error().Err(err).Int("display_id", display.ID).Msg("resolver: sync membership query failed")
		return nil, false
	}
	if group == nil {
		return nil, false
	}
	// IDLE groups do not claim the display; only live playback does.
	if group.State != model.PlaybackPlaying && group.State != model.PlaybackPaused {
		return nil, false
	}
	return SyncContent{GroupID: group.ID, ContentID: group.CurrentContentID}, true
}

func (r *Resolver) resolveSchedule(display model.Display, now time.Time) (Resolution, bool) {
	schedules, err := r.queries.ListSchedulesForDisplay(display.ID)
	if err != nil {
		log.Error().Err(err).Int("display_id", display.ID).Msg("resolver: schedule query failed")
		return nil, false
	}

	var (
		best      *model.ScheduleWindow
		bestSched int
	)
	for _, s := range schedules {
		for i := range s.Windows {
			w := s.Windows[i]
			if !r.activator.IsActiveNow(w, now) {
				continue
			}
			if best == nil || windowBeats(w, *best) {
				best = &s.Windows[i]
				bestSched = s.ID
			}
		}
	}
	if best == nil {
		return nil, false
	}
	return ScheduledContent{
		ScheduleID: bestSched,
		WindowID:   best.ID,
		ContentID:  best.ContentID,
		Score:      scheduleBand + best.Priority,
	}, true
}

func windowBeats(a, b model.ScheduleWindow) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.Start.After(b.Start)
}

func (r *Resolver) resolvePlaylist(display model.Display, now time.Time) (Resolution, bool) {
	items, err := r.queries.ListPlaylistItemsForDisplay(display.ID)
	if err != nil {
		log.Error().Err(err).Int("display_id", display.ID).Msg("resolver: playlist query failed")
		return nil, false
	}
	for _, item := range items {
		if item.EligibleAt(now) {
			return PlaylistContent{}, true
		}
	}
	return nil, false
}
