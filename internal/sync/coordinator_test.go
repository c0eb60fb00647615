package sync

import (
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/model"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  stdsync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// memStore records every persisted snapshot.
type memStore struct {
	mu     stdsync.Mutex
	groups []model.SyncGroup
	saved  []model.SyncGroup
}

func (s *memStore) ListSyncGroups() ([]model.SyncGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SyncGroup(nil), s.groups...), nil
}

func (s *memStore) SaveSyncGroupState(g model.SyncGroup) error {
	s.mu.Lock()
	s.saved = append(s.saved, g)
	s.mu.Unlock()
	return nil
}

func (s *memStore) lastSaved() (model.SyncGroup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return model.SyncGroup{}, false
	}
	return s.saved[len(s.saved)-1], true
}

// fakeChannel records sends per display and can simulate failures.
type fakeChannel struct {
	mu   stdsync.Mutex
	sent map[int][]any
	fail map[int]bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{sent: make(map[int][]any), fail: make(map[int]bool)}
}

func (f *fakeChannel) SendToDisplay(displayID int, message any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[displayID] {
		return assert.AnError
	}
	f.sent[displayID] = append(f.sent[displayID], message)
	return nil
}

func (f *fakeChannel) sentTo(displayID int) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.sent[displayID]...)
}

// fakePresence reports a fixed set of connected displays.
type fakePresence struct {
	mu      stdsync.Mutex
	online  map[int]bool
	touched []int
}

func newFakePresence(online ...int) *fakePresence {
	p := &fakePresence{online: make(map[int]bool)}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *fakePresence) Touch(displayID int, now time.Time) {
	p.mu.Lock()
	p.touched = append(p.touched, displayID)
	p.online[displayID] = true
	p.mu.Unlock()
}

func (p *fakePresence) Connected(displayIDs []int) []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []int
	for _, id := range displayIDs {
		if p.online[id] {
			out = append(out, id)
		}
	}
	return out
}

// eventRecorder captures sink calls in order.
type eventRecorder struct {
	mu     stdsync.Mutex
	events []string
}

func (e *eventRecorder) record(s string) {
	e.mu.Lock()
	e.events = append(e.events, s)
	e.mu.Unlock()
}

func (e *eventRecorder) GroupUpdated(g model.SyncGroup, at time.Time) {
	e.record("group-updated")
}

func (e *eventRecorder) ConductorRevoked(groupID, displayID int, reason AssignReason, at time.Time) {
	e.record("revoked:" + string(reason))
}

func (e *eventRecorder) ConductorAssigned(groupID, displayID int, reason AssignReason, at time.Time) {
	e.record("assigned:" + string(reason))
}

func (e *eventRecorder) CommandApplied(groupID int, cmd Command, at time.Time) {
	e.record("command:" + string(cmd.Type))
}

func (e *eventRecorder) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type testRig struct {
	coord    *Coordinator
	store    *memStore
	channel  *fakeChannel
	presence *fakePresence
	events   *eventRecorder
	clock    *fakeClock
}

func newTestRig(t *testing.T, groups ...model.SyncGroup) *testRig {
	t.Helper()
	rig := &testRig{
		store:    &memStore{groups: groups},
		channel:  newFakeChannel(),
		presence: newFakePresence(),
		events:   &eventRecorder{},
		clock:    &fakeClock{now: baseTime},
	}
	rig.coord = NewCoordinator(rig.store, rig.channel, rig.presence, rig.events, Options{
		// long intervals keep background loops quiet during tests
		TickInterval:      time.Hour,
		HeartbeatInterval: 10 * time.Second,
		HeartbeatTimeout:  30 * time.Second,
		Clock:             rig.clock.Now,
	})
	require.NoError(t, rig.coord.Load())
	return rig
}

func testGroup(id int, members ...int) model.SyncGroup {
	return model.SyncGroup{
		ID:      id,
		HotelID: 10,
		Name:    "lobby",
		State:   model.PlaybackIdle,
		Members: members,
		Items: []model.SyncGroupItem{
			{ID: 1, GroupID: id, ContentID: 101, Position: 0, Duration: intPtr(30)},
			{ID: 2, GroupID: id, ContentID: 102, Position: 1, Duration: intPtr(30)},
			{ID: 3, GroupID: id, ContentID: 103, Position: 2, Duration: intPtr(30)},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestStartFromIdle(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))

	snap, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	assert.Equal(t, model.PlaybackPlaying, snap.State)
	require.NotNil(t, snap.CurrentContentID)
	assert.Equal(t, 101, *snap.CurrentContentID)
	assert.Equal(t, 0.0, snap.CurrentTime)
	assert.Equal(t, 0, snap.PlaylistIndex)
}

func TestStartMidContent(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	snap, err := rig.coord.Start(1, 102, 12.5)
	require.NoError(t, err)

	assert.InDelta(t, 12.5, snap.CurrentTime, 0.001)
	assert.Equal(t, 1, snap.PlaylistIndex, "index should follow the started content")
}

func TestPauseFreezesPosition(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	rig.clock.Advance(5 * time.Second)
	snap, err := rig.coord.Pause(1)
	require.NoError(t, err)

	assert.Equal(t, model.PlaybackPaused, snap.State)
	assert.InDelta(t, 5.0, snap.CurrentTime, 0.001)
	assert.Nil(t, snap.StartedAt)
}

func TestPausedPositionDoesNotAdvance(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	rig.clock.Advance(5 * time.Second)
	_, err = rig.coord.Pause(1)
	require.NoError(t, err)

	rig.clock.Advance(time.Minute)
	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, snap.CurrentTime, 0.001)
}

func TestResumeContinuesFromFrozenPosition(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	rig.clock.Advance(5 * time.Second)
	_, err = rig.coord.Pause(1)
	require.NoError(t, err)
	rig.clock.Advance(time.Minute)

	snap, err := rig.coord.Resume(1)
	require.NoError(t, err)
	assert.Equal(t, model.PlaybackPlaying, snap.State)
	assert.InDelta(t, 5.0, snap.CurrentTime, 0.001)

	rig.clock.Advance(3 * time.Second)
	snap, err = rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, snap.CurrentTime, 0.001)
}

func TestSeekWhilePlayingKeepsState(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	snap, err := rig.coord.Seek(1, 20)
	require.NoError(t, err)

	assert.Equal(t, model.PlaybackPlaying, snap.State)
	assert.InDelta(t, 20.0, snap.CurrentTime, 0.001)
}

func TestSeekWhilePaused(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	_, err = rig.coord.Pause(1)
	require.NoError(t, err)

	snap, err := rig.coord.Seek(1, 15)
	require.NoError(t, err)

	assert.Equal(t, model.PlaybackPaused, snap.State)
	assert.InDelta(t, 15.0, snap.CurrentTime, 0.001)
}

func TestInvalidTransitions(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Pause(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = rig.coord.Resume(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = rig.coord.Seek(1, 10)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = rig.coord.Stop(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, model.PlaybackIdle, snap.State, "rejected transitions must not change state")
}

func TestUnknownGroup(t *testing.T) {
	rig := newTestRig(t)

	_, err := rig.coord.Start(42, 101, 0)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	_, err = rig.coord.Snapshot(42)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestStopClearsContent(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	snap, err := rig.coord.Stop(1)
	require.NoError(t, err)

	assert.Equal(t, model.PlaybackStopped, snap.State)
	assert.Nil(t, snap.CurrentContentID)
	assert.Equal(t, 0.0, snap.CurrentTime)
}

func TestNextAdvancesAndWraps(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 103, 10)
	require.NoError(t, err)

	snap, err := rig.coord.Next(1)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.PlaylistIndex, "next from the last item wraps to the first")
	assert.Equal(t, 101, *snap.CurrentContentID)
	assert.Equal(t, 0.0, snap.CurrentTime, "advanced item starts from zero")
}

func TestPreviousWrapsBackward(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	snap, err := rig.coord.Previous(1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.PlaylistIndex)
	assert.Equal(t, 103, *snap.CurrentContentID)
}

func TestNextWithRepeatedContent(t *testing.T) {
	// the same content can appear more than once in a playlist; advancing
	// must step through positions, not snap back to the first occurrence
	g := testGroup(1, 11)
	g.Items = []model.SyncGroupItem{
		{ID: 1, GroupID: 1, ContentID: 100, Position: 0, Duration: intPtr(30)},
		{ID: 2, GroupID: 1, ContentID: 200, Position: 1, Duration: intPtr(30)},
		{ID: 3, GroupID: 1, ContentID: 100, Position: 2, Duration: intPtr(30)},
	}
	rig := newTestRig(t, g)

	_, err := rig.coord.Start(1, 200, 0)
	require.NoError(t, err)

	snap, err := rig.coord.Next(1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.PlaylistIndex)
	assert.Equal(t, 100, *snap.CurrentContentID)

	snap, err = rig.coord.Next(1)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.PlaylistIndex, "next from the last item wraps to the first")
	assert.Equal(t, 100, *snap.CurrentContentID)
}

func TestNextOnEmptyPlaylist(t *testing.T) {
	g := testGroup(1, 11)
	g.Items = nil
	rig := newTestRig(t, g)

	_, err := rig.coord.Next(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMutationsArePersisted(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	saved, ok := rig.store.lastSaved()
	require.True(t, ok)
	assert.Equal(t, model.PlaybackPlaying, saved.State)
	assert.Equal(t, 101, *saved.CurrentContentID)
}

func TestRegisterRefreshKeepsPlaybackState(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	refreshed := testGroup(1, 11, 12, 13)
	rig.coord.Register(refreshed)

	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, model.PlaybackPlaying, snap.State, "membership refresh must not reset playback")
	assert.Equal(t, []int{11, 12, 13}, snap.Members)
}

func TestRemoveDropsGroup(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	rig.coord.Remove(1)

	_, err := rig.coord.Snapshot(1)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
