package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast/internal/model"
)

func TestAssignConductorRequiresMembership(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))

	err := rig.coord.AssignConductor(1, 99, "sock-1", ReasonManual)
	assert.ErrorIs(t, err, ErrDisplayNotInGroup)

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	assert.Nil(t, conductor)
}

func TestAssignConductor(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))

	err := rig.coord.AssignConductor(1, 12, "sock-1", ReasonManual)
	require.NoError(t, err)

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	require.NotNil(t, conductor)
	assert.Equal(t, 12, conductor.DisplayID)
	assert.Equal(t, baseTime, conductor.LastHeartbeat)

	assert.Contains(t, rig.events.all(), "assigned:manual")
}

func TestHeartbeatRefreshesConductor(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	rig.clock.Advance(20 * time.Second)
	rig.coord.Heartbeat(12)

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(20*time.Second), conductor.LastHeartbeat)
}

func TestSweepKeepsLiveConductor(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	// inside the timeout window
	rig.clock.Advance(25 * time.Second)
	rig.coord.sweepConductors()

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	require.NotNil(t, conductor)
	assert.Equal(t, 12, conductor.DisplayID)
}

func TestSweepFailsOverToLowestConnectedMember(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 14, 11, 12))
	rig.presence.Touch(11, baseTime)
	rig.presence.Touch(14, baseTime)
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	rig.clock.Advance(31 * time.Second)
	rig.coord.sweepConductors()

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	require.NotNil(t, conductor)
	assert.Equal(t, 11, conductor.DisplayID, "lowest connected id wins the election")
}

func TestSweepEmitsRevokeBeforeAssign(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))
	rig.presence.Touch(11, baseTime)
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	rig.clock.Advance(31 * time.Second)
	rig.coord.sweepConductors()

	var order []string
	for _, e := range rig.events.all() {
		if e == "revoked:failover" || e == "assigned:elected" {
			order = append(order, e)
		}
	}
	assert.Equal(t, []string{"revoked:failover", "assigned:elected"}, order)
}

func TestSweepExcludesDisconnectedMembers(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12, 13))
	// only 13 is connected
	rig.presence.Touch(13, baseTime)
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	rig.clock.Advance(31 * time.Second)
	rig.coord.sweepConductors()

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	require.NotNil(t, conductor)
	assert.Equal(t, 13, conductor.DisplayID)
}

func TestSweepWithNoCandidatesLeavesGroupConductorless(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 12))
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))

	rig.clock.Advance(31 * time.Second)
	rig.coord.sweepConductors()

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	assert.Nil(t, conductor)

	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.Nil(t, snap.ConductorID)
	assert.Contains(t, rig.events.all(), "revoked:failover")
	assert.NotContains(t, rig.events.all(), "assigned:elected")
}

func TestReportPositionRequiresMembership(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11))

	err := rig.coord.ReportPosition(1, 99, 10)
	assert.ErrorIs(t, err, ErrDisplayNotInGroup)
}

func TestReportPositionActsAsConductorHeartbeat(t *testing.T) {
	rig := newTestRig(t, testGroup(1, 11, 12))
	require.NoError(t, rig.coord.AssignConductor(1, 12, "", ReasonManual))
	_, err := rig.coord.Start(1, 101, 0)
	require.NoError(t, err)

	rig.clock.Advance(20 * time.Second)
	require.NoError(t, rig.coord.ReportPosition(1, 12, 20))

	conductor, err := rig.coord.Conductor(1)
	require.NoError(t, err)
	assert.Equal(t, baseTime.Add(20*time.Second), conductor.LastHeartbeat)
}

func TestLoadResumesPersistedPlayback(t *testing.T) {
	anchor := baseTime.Add(-10 * time.Second)
	g := testGroup(1, 11)
	g.State = model.PlaybackPlaying
	g.CurrentContentID = intPtr(101)
	g.StartedAt = &anchor
	rig := newTestRig(t, g)

	snap, err := rig.coord.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, model.PlaybackPlaying, snap.State)
	assert.InDelta(t, 10.0, snap.CurrentTime, 0.001, "position rolls forward from the persisted anchor")
}
