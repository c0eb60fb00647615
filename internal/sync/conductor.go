package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
)

// AssignConductor makes displayID the group's timing reference. The
// display must be a member. Manual assignment always wins immediately
// over a prior election.
func (c *Coordinator) AssignConductor(groupID, displayID int, socketID string, reason AssignReason) error {
	g, err := c.lookup(groupID)
	if err != nil {
		return err
	}

	now := c.opts.Clock()
	g.mu.Lock()
	if !g.state.HasMember(displayID) {
		g.mu.Unlock()
		return ErrDisplayNotInGroup
	}
	g.conductor = &model.ConductorAssignment{
		GroupID:       groupID,
		DisplayID:     displayID,
		SocketID:      socketID,
		AssignedAt:    now,
		LastHeartbeat: now,
	}
	g.state.ConductorID = &displayID
	snap := c.snapshotLocked(g)
	g.mu.Unlock()

	log.Info().
		Int("group_id", groupID).
		Int("display_id", displayID).
		Str("reason", string(reason)).
		Msg("conductor assigned")
	c.events.ConductorAssigned(groupID, displayID, reason, now)

	if err := c.store.SaveSyncGroupState(snap); err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to persist conductor assignment")
	}
	return nil
}

// Conductor returns the group's current assignment, or nil.
func (c *Coordinator) Conductor(groupID int) (*model.ConductorAssignment, error) {
	g, err := c.lookup(groupID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conductor == nil {
		return nil, nil
	}
	copied := *g.conductor
	return &copied, nil
}

// Heartbeat records liveness for a display. The sweep judges conductor
// liveness by server receive time, not the sender's clock, so skewed
// device clocks cannot trigger failover.
func (c *Coordinator) Heartbeat(displayID int) {
	now := c.opts.Clock()
	if c.presence != nil {
		c.presence.Touch(displayID, now)
	}

	c.mu.RLock()
	groups := make([]*group, 0, len(c.groups))
	for _, g := range c.groups {
		groups = append(groups, g)
	}
	c.mu.RUnlock()

	for _, g := range groups {
		g.mu.Lock()
		if g.conductor != nil && g.conductor.DisplayID == displayID {
			g.conductor.LastHeartbeat = now
		}
		g.mu.Unlock()
	}
}

// ReportPosition ingests a member's position report. Reports from the
// conductor double as heartbeats. Large drift against the authoritative
// position is logged for operators; correction itself is the display
// runtime's job.
func (c *Coordinator) ReportPosition(groupID, displayID int, position float64) error {
	g, err := c.lookup(groupID)
	if err != nil {
		return err
	}

	now := c.opts.Clock()
	g.mu.Lock()
	if !g.state.HasMember(displayID) {
		g.mu.Unlock()
		return ErrDisplayNotInGroup
	}
	if g.conductor != nil && g.conductor.DisplayID == displayID {
		g.conductor.LastHeartbeat = now
	}
	var drift float64
	if g.state.State == model.PlaybackPlaying && g.state.StartedAt != nil {
		drift = position - now.Sub(*g.state.StartedAt).Seconds()
	}
	g.mu.Unlock()

	if c.presence != nil {
		c.presence.Touch(displayID, now)
	}
	if drift > 1.0 || drift < -1.0 {
		log.Debug().
			Int("group_id", groupID).
			Int("display_id", displayID).
			Float64("drift_sec", drift).
			Msg("display drift exceeds one second")
	}
	return nil
}

// RunConductorSweep periodically checks every assigned conductor for
// heartbeat timeout and fails over to a connected member. Blocks until
// ctx is cancelled.
func (c *Coordinator) RunConductorSweep(ctx context.Context) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepConductors()
		}
	}
}

func (c *Coordinator) sweepConductors() {
	now := c.opts.Clock()

	c.mu.RLock()
	ids := make([]int, 0, len(c.groups))
	for id := range c.groups {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	for _, id := range ids {
		c.sweepGroup(id, now)
	}
}

// sweepGroup revokes a timed-out conductor and elects a replacement from
// the remaining connected members. Revocation is emitted strictly before
// the new assignment.
func (c *Coordinator) sweepGroup(groupID int, now time.Time) {
	g, err := c.lookup(groupID)
	if err != nil {
		return
	}

	g.mu.Lock()
	if g.conductor == nil || now.Sub(g.conductor.LastHeartbeat) <= c.opts.HeartbeatTimeout {
		g.mu.Unlock()
		return
	}
	failed := g.conductor.DisplayID
	g.conductor = nil
	g.state.ConductorID = nil

	elected, ok := c.electLocked(g, failed)
	if ok {
		g.conductor = &model.ConductorAssignment{
			GroupID:       groupID,
			DisplayID:     elected,
			AssignedAt:    now,
			LastHeartbeat: now,
		}
		g.state.ConductorID = &elected
	}
	snap := c.snapshotLocked(g)
	g.mu.Unlock()

	log.Warn().
		Int("group_id", groupID).
		Int("display_id", failed).
		Msg("conductor heartbeat timed out, revoking")
	c.events.ConductorRevoked(groupID, failed, ReasonFailover, now)
	if ok {
		log.Info().
			Int("group_id", groupID).
			Int("display_id", elected).
			Msg("conductor elected")
		c.events.ConductorAssigned(groupID, elected, ReasonElected, now)
	}

	if err := c.store.SaveSyncGroupState(snap); err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to persist conductor failover")
	}
}

// electLocked picks the lowest-id connected member, excluding the failed
// conductor. Deterministic so that concurrent sweeps on replicas agree.
func (c *Coordinator) electLocked(g *group, exclude int) (int, bool) {
	candidates := make([]int, 0, len(g.state.Members))
	for _, id := range g.state.Members {
		if id != exclude {
			candidates = append(candidates, id)
		}
	}
	if c.presence != nil {
		candidates = c.presence.Connected(candidates)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	for _, id := range candidates[1:] {
		if id < best {
			best = id
		}
	}
	return best, true
}
