package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/model"
)

func lastTick(t *testing.T, c *fakeChannel, displayID int) Tick {
	t.Helper()
	sent := c.sentTo(displayID)
	require.NotEmpty(t, sent)
	tick, ok := sent[len(sent)-1].(Tick)
	require.True(t, ok)
	return tick
}

func TestBroadcastSendsTickToEveryMember(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12, 13))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	rig.clock.Advance(4 * time.Second)

	rig.coord.Broadcaster().broadcast(1)

	for _, id := range []int{11, 12, 13} {
		tick := lastTick(t, rig.channel, id)
		assert.Equal(t, 1, tick.GroupID)
		assert.Equal(t, 101, *tick.ContentID)
		assert.InDelta(t, 4.0, tick.CurrentTime, 0.001)
		assert.Equal(t, model.PlaybackPlaying, tick.PlaybackState)
		assert.Equal(t, rig.clock.Now(), tick.ServerTime)
	}
}

func TestBroadcastFailedSendDoesNotAffectOthers(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12, 13))
	rig.channel.fail[12] = true

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	rig.clock.Advance(time.Second)

	rig.coord.Broadcaster().broadcast(1)

	assert.NotEmpty(t, rig.channel.sentTo(11))
	assert.NotEmpty(t, rig.channel.sentTo(13))
}

func TestBroadcastSkipsNonPlayingGroup(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	_, err = rig.coord.Pause(1)
	require.NoError(t, err)

	before := len(rig.channel.sentTo(11))
	rig.coord.Broadcaster().broadcast(1)

	assert.Len(t, rig.channel.sentTo(11), before, "paused groups get no periodic ticks")
}

func TestBroadcastImplicitAdvanceAtItemEnd(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	// item durations are 30s each
	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	rig.clock.Advance(31 * time.Second)

	rig.coord.Broadcaster().broadcast(1)

	tick := lastTick(t, rig.channel, 11)
	assert.Equal(t, 102, *tick.ContentID, "position past the item duration advances to the next item")
	assert.Equal(t, 0.0, tick.CurrentTime)

	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PlaylistIndex)

	saved, ok := rig.store.lastSaved()
	require.True(t, ok)
	assert.Equal(t, 102, *saved.CurrentContentID, "implicit advance is persisted")
}

func TestBroadcastAdvanceWrapsToFirstItem(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 103, 0)
	require.NoError(t, err)
	rig.clock.Advance(31 * time.Second)

	rig.coord.Broadcaster().broadcast(1)

	tick := lastTick(t, rig.channel, 11)
	assert.Equal(t, 101, *tick.ContentID)
}

func TestStateTransitionPushesImmediateTick(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)
	_, err = rig.coord.Pause(1)
	require.NoError(t, err)

	tick := lastTick(t, rig.channel, 11)
	assert.Equal(t, model.PlaybackPaused, tick.PlaybackState, "members learn about a pause without waiting a period")
}

func TestSendSyncStateRequiresMembership(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	err := rig.coord.Broadcaster().SendSyncState(1, 99)
	assert.ErrorIs(t, err, ErrDisplayNotInGroup)
}

func TestSendSyncStateDeliversCurrentTick(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))

	_, err := rig.coord.Start(1, 102, 7)
	require.NoError(t, err)

	require.NoError(t, rig.coord.Broadcaster().SendSyncState(1, 12))

	tick := lastTick(t, rig.channel, 12)
	assert.Equal(t, 102, *tick.ContentID)
	assert.InDelta(t, 7.0, tick.CurrentTime, 0.001)
	assert.Equal(t, model.PlaybackPlaying, tick.PlaybackState)
}
