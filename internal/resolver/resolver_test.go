package resolver

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/model"
	"github.com/roomcast/roomcast/internal/schedule"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeQueries serves canned rows to the resolver.
type fakeQueries struct {
	display    model.Display
	displayErr error
	alerts     []model.Alert
	syncGroup  *model.SyncGroup
	schedules  []model.Schedule
	playlist   []model.PlaylistItem
}

func (f *fakeQueries) GetDisplayByID(id int) (model.Display, error) {
	if f.displayErr != nil {
		return model.Display{}, f.displayErr
	}
	return f.display, nil
}

func (f *fakeQueries) ListActiveAlerts(displayID int, now time.Time) ([]model.Alert, error) {
	return f.alerts, nil
}

func (f *fakeQueries) GetActiveSyncMembership(displayID int) (*model.SyncGroup, error) {
	return f.syncGroup, nil
}

func (f *fakeQueries) ListSchedulesForDisplay(displayID int) ([]model.Schedule, error) {
	return f.schedules, nil
}

func (f *fakeQueries) ListPlaylistItemsForDisplay(displayID int) ([]model.PlaylistItem, error) {
	return f.playlist, nil
}

func intPtr(v int) *int { return &v }

func newTestResolver(q *fakeQueries) *Resolver {
	return New(q, schedule.NewEvaluator()).WithClock(func() time.Time { return testNow })
}

func testDisplay() model.Display {
	return model.Display{ID: 1, HotelID: 10, AreaID: intPtr(5)}
}

func hotelAlert(id, priority int, startAt time.Time) model.Alert {
	return model.Alert{
		ID: id, HotelID: 10, Type: "emergency", Priority: priority,
		ContentID: 100 + id, IsActive: true, StartAt: startAt,
	}
}

func TestResolve_UnknownDisplay(t *testing.T) {
	q := &fakeQueries{displayErr: sql.ErrNoRows}
	res := newTestResolver(q).Resolve(99)

	none, ok := res.(NoContent)
	require.True(t, ok)
	assert.Equal(t, "Display not found", none.Reason())
	assert.Equal(t, SourceNone, res.Type())
}

func TestResolve_NothingAssigned(t *testing.T) {
	q := &fakeQueries{display: testDisplay()}
	res := newTestResolver(q).Resolve(1)

	none, ok := res.(NoContent)
	require.True(t, ok)
	assert.Equal(t, "No content assigned", none.Reason())
}

func TestResolve_AlertWinsOverEverything(t *testing.T) {
	d := testDisplay()
	d.FallbackContentID = intPtr(900)
	q := &fakeQueries{
		display:   d,
		alerts:    []model.Alert{hotelAlert(1, 50, testNow.Add(-time.Hour))},
		syncGroup: &model.SyncGroup{ID: 7, State: model.PlaybackPlaying, CurrentContentID: intPtr(200)},
		schedules: []model.Schedule{{ID: 3, Windows: []model.ScheduleWindow{{
			ID: 30, ContentID: 300, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour),
			Recurrence: "none", Enabled: true,
		}}}},
		playlist: []model.PlaylistItem{{ID: 40, ContentID: 400}},
	}

	res := newTestResolver(q).Resolve(1)

	alert, ok := res.(AlertContent)
	require.True(t, ok)
	assert.Equal(t, 1, alert.AlertID)
	assert.Equal(t, 1050, alert.Priority())
	assert.Equal(t, "Active alert", alert.Reason())
}

func TestResolve_AlertPriorityFloorBeatsAnySchedule(t *testing.T) {
	// the lowest-priority alert still outranks the highest-priority schedule
	q := &fakeQueries{
		display: testDisplay(),
		alerts:  []model.Alert{hotelAlert(1, 1, testNow.Add(-time.Minute))},
		schedules: []model.Schedule{{ID: 3, Windows: []model.ScheduleWindow{{
			ID: 30, ContentID: 300, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour),
			Recurrence: "none", Enabled: true, Priority: 899,
		}}}},
	}

	res := newTestResolver(q).Resolve(1)

	require.IsType(t, AlertContent{}, res)
	assert.Greater(t, res.Priority(), scheduleBand+899)
}

func TestResolve_EmergencyAlertScore(t *testing.T) {
	q := &fakeQueries{
		display: testDisplay(),
		alerts:  []model.Alert{hotelAlert(1, 1000, testNow.Add(-time.Minute))},
	}

	res := newTestResolver(q).Resolve(1)

	alert := res.(AlertContent)
	assert.Equal(t, 2000, alert.Priority())
}

func TestResolve_HighestPriorityAlertWins(t *testing.T) {
	q := &fakeQueries{
		display: testDisplay(),
		alerts: []model.Alert{
			hotelAlert(1, 10, testNow.Add(-time.Hour)),
			hotelAlert(2, 90, testNow.Add(-2*time.Hour)),
		},
	}

	res := newTestResolver(q).Resolve(1)

	alert := res.(AlertContent)
	assert.Equal(t, 2, alert.AlertID)
}

func TestResolve_AlertScopeBreaksPriorityTie(t *testing.T) {
	displayScoped := hotelAlert(1, 40, testNow.Add(-2*time.Hour))
	displayScoped.DisplayID = intPtr(1)
	areaScoped := hotelAlert(2, 40, testNow.Add(-time.Hour))
	areaScoped.AreaID = intPtr(5)
	hotelScoped := hotelAlert(3, 40, testNow.Add(-time.Minute))

	q := &fakeQueries{
		display: testDisplay(),
		alerts:  []model.Alert{hotelScoped, areaScoped, displayScoped},
	}

	res := newTestResolver(q).Resolve(1)

	alert := res.(AlertContent)
	assert.Equal(t, 1, alert.AlertID, "display scope should beat area and hotel scope")
}

func TestResolve_AlertRecencyBreaksFullTie(t *testing.T) {
	older := hotelAlert(1, 40, testNow.Add(-2*time.Hour))
	newer := hotelAlert(2, 40, testNow.Add(-time.Minute))

	q := &fakeQueries{
		display: testDisplay(),
		alerts:  []model.Alert{older, newer},
	}

	res := newTestResolver(q).Resolve(1)

	alert := res.(AlertContent)
	assert.Equal(t, 2, alert.AlertID)
}

func TestResolve_ExpiredAlertIgnored(t *testing.T) {
	expired := hotelAlert(1, 50, testNow.Add(-2*time.Hour))
	end := testNow.Add(-time.Hour)
	expired.EndAt = &end

	q := &fakeQueries{display: testDisplay(), alerts: []model.Alert{expired}}
	res := newTestResolver(q).Resolve(1)

	assert.IsType(t, NoContent{}, res)
}

func TestResolve_FutureAlertIgnored(t *testing.T) {
	future := hotelAlert(1, 50, testNow.Add(time.Hour))

	q := &fakeQueries{display: testDisplay(), alerts: []model.Alert{future}}
	res := newTestResolver(q).Resolve(1)

	assert.IsType(t, NoContent{}, res)
}

func TestResolve_AlertForOtherAreaIgnored(t *testing.T) {
	other := hotelAlert(1, 50, testNow.Add(-time.Hour))
	other.AreaID = intPtr(99)

	q := &fakeQueries{display: testDisplay(), alerts: []model.Alert{other}}
	res := newTestResolver(q).Resolve(1)

	assert.IsType(t, NoContent{}, res)
}

func TestResolve_SyncBeatsSchedule(t *testing.T) {
	q := &fakeQueries{
		display:   testDisplay(),
		syncGroup: &model.SyncGroup{ID: 7, State: model.PlaybackPlaying, CurrentContentID: intPtr(200)},
		schedules: []model.Schedule{{ID: 3, Windows: []model.ScheduleWindow{{
			ID: 30, ContentID: 300, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour),
			Recurrence: "none", Enabled: true, Priority: 500,
		}}}},
	}

	res := newTestResolver(q).Resolve(1)

	sync, ok := res.(SyncContent)
	require.True(t, ok)
	assert.Equal(t, 7, sync.GroupID)
	assert.Equal(t, 500, sync.Priority())
}

func TestResolve_IdleSyncGroupDoesNotClaim(t *testing.T) {
	q := &fakeQueries{
		display:   testDisplay(),
		syncGroup: &model.SyncGroup{ID: 7, State: model.PlaybackIdle},
		schedules: []model.Schedule{{ID: 3, Windows: []model.ScheduleWindow{{
			ID: 30, ContentID: 300, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour),
			Recurrence: "none", Enabled: true,
		}}}},
	}

	res := newTestResolver(q).Resolve(1)

	sched, ok := res.(ScheduledContent)
	require.True(t, ok)
	assert.Equal(t, 300, sched.ContentID)
}

func TestResolve_PausedSyncGroupStillClaims(t *testing.T) {
	q := &fakeQueries{
		display:   testDisplay(),
		syncGroup: &model.SyncGroup{ID: 7, State: model.PlaybackPaused, CurrentContentID: intPtr(200)},
	}

	res := newTestResolver(q).Resolve(1)

	assert.IsType(t, SyncContent{}, res)
}

func TestResolve_ScheduleWindowPriorityTieBreak(t *testing.T) {
	low := model.ScheduleWindow{
		ID: 30, ContentID: 300, Start: testNow.Add(-time.Hour), End: testNow.Add(time.Hour),
		Recurrence: "none", Enabled: true, Priority: 1,
	}
	high := model.ScheduleWindow{
		ID: 31, ContentID: 301, Start: testNow.Add(-2 * time.Hour), End: testNow.Add(time.Hour),
		Recurrence: "none", Enabled: true, Priority: 9,
	}

	q := &fakeQueries{
		display:   testDisplay(),
		schedules: []model.Schedule{{ID: 3, Windows: []model.ScheduleWindow{low, high}}},
	}

	res := newTestResolver(q).Resolve(1)

	sched := res.(ScheduledContent)
	assert.Equal(t, 31, sched.WindowID)
	assert.Equal(t, scheduleBand+9, sched.Priority())
}

func TestResolve_PlaylistWhenNothingElse(t *testing.T) {
	q := &fakeQueries{
		display:  testDisplay(),
		playlist: []model.PlaylistItem{{ID: 40, ContentID: 400}},
	}

	res := newTestResolver(q).Resolve(1)

	assert.IsType(t, PlaylistContent{}, res)
	assert.Equal(t, "Playlist rotation", res.Reason())
}

func TestResolve_IneligiblePlaylistFallsThrough(t *testing.T) {
	start := testNow.Add(time.Hour)
	d := testDisplay()
	d.FallbackContentID = intPtr(900)
	q := &fakeQueries{
		display:  d,
		playlist: []model.PlaylistItem{{ID: 40, ContentID: 400, StartTime: &start}},
	}

	res := newTestResolver(q).Resolve(1)

	fb, ok := res.(FallbackContent)
	require.True(t, ok)
	assert.Equal(t, 900, fb.ContentID)
	assert.Equal(t, -1, fb.Priority())
}

func TestResolve_Idempotent(t *testing.T) {
	q := &fakeQueries{
		display: testDisplay(),
		alerts:  []model.Alert{hotelAlert(1, 50, testNow.Add(-time.Hour))},
	}
	r := newTestResolver(q)

	first := r.Resolve(1)
	second := r.Resolve(1)

	assert.Equal(t, first, second)
}
