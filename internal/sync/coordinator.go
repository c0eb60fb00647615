// Package sync owns synchronized playback for display groups: the
// per-group state machine, conductor lifecycle and failover, periodic
// tick broadcast and command routing.
package sync

import (
	stdsync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
)

// GroupStore is the slice of persistence the coordinator writes through.
// Saves happen outside any per-group lock and are best-effort.
type GroupStore interface {
	ListSyncGroups() ([]model.SyncGroup, error)
	SaveSyncGroupState(g model.SyncGroup) error
}

// Options tunes the coordinator's timers. Zero values fall back to
// defaults chosen for a 50-200ms end-to-end sync tolerance.
type Options struct {
	TickInterval      time.Duration
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	Clock             func() time.Time
}

func (o *Options) withDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 10 * time.Second
	}
	if o.HeartbeatTimeout <= 0 {
		// generous: 3x the heartbeat interval, so clock skew between
		// sender and sweep does not cause false-positive failover
		o.HeartbeatTimeout = 3 * o.HeartbeatInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// group is the serialized-access arena entry for one sync group. All
// mutation happens under mu, giving the single-writer property.
type group struct {
	mu stdsync.Mutex

	state model.SyncGroup

	conductor *model.ConductorAssignment

	// cmdMu serializes external command application for the group.
	// lastCommandAt is the ordering clock of accepted commands and is
	// guarded by cmdMu, not mu.
	cmdMu         stdsync.Mutex
	lastCommandAt time.Time
}

// Coordinator owns every group's playback state machine and conductor
// assignment. Commands for one group are serialized; different groups
// proceed concurrently.
type Coordinator struct {
	mu     stdsync.RWMutex
	groups map[int]*group

	store       GroupStore
	channel     Channel
	presence    Presence
	events      EventSink
	broadcaster *Broadcaster
	opts        Options
}

func NewCoordinator(store GroupStore, channel Channel, presence Presence, events EventSink, opts Options) *Coordinator {
	opts.withDefaults()
	if events == nil {
		events = NopSink{}
	}
	c := &Coordinator{
		groups:   make(map[int]*group),
		store:    store,
		channel:  channel,
		presence: presence,
		events:   events,
		opts:     opts,
	}
	c.broadcaster = newBroadcaster(c, channel, opts.TickInterval, opts.Clock)
	return c
}

// Broadcaster exposes the tick broadcaster, used by the request-sync path.
func (c *Coordinator) Broadcaster() *Broadcaster {
	return c.broadcaster
}

// Load hydrates the in-memory arena from persisted groups, typically at
// startup. Groups persisted as PLAYING resume their tick loops.
func (c *Coordinator) Load() error {
	groups, err := c.store.ListSyncGroups()
	if err != nil {
		return err
	}
	for _, g := range groups {
		c.Register(g)
	}
	log.Info().Int("groups", len(groups)).Msg("sync coordinator loaded groups")
	return nil
}

// Register adds a group created by external admin action to the arena.
// Re-registering an existing id refreshes members and playlist items but
// keeps live playback state.
func (c *Coordinator) Register(g model.SyncGroup) {
	c.mu.Lock()
	existing, ok := c.groups[g.ID]
	if !ok {
		if g.State == "" {
			g.State = model.PlaybackIdle
		}
		c.groups[g.ID] = &group{state: g}
		c.mu.Unlock()
		if g.State == model.PlaybackPlaying {
			c.broadcaster.ensureRunning(g.ID)
		}
		return
	}
	c.mu.Unlock()

	existing.mu.Lock()
	existing.state.Name = g.Name
	existing.state.Members = g.Members
	existing.state.Items = g.Items
	existing.mu.Unlock()
}

// Remove drops a group from the arena and cancels its scheduled work.
// Called when the group is deleted externally.
func (c *Coordinator) Remove(groupID int) {
	c.mu.Lock()
	delete(c.groups, groupID)
	c.mu.Unlock()
	c.broadcaster.stop(groupID)
}

// Snapshot returns a copy of the group's current state.
func (c *Coordinator) Snapshot(groupID int) (model.SyncGroup, error) {
	g, err := c.lookup(groupID)
	if err != nil {
		return model.SyncGroup{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return c.snapshotLocked(g), nil
}

// Snapshots returns a copy of every registered group, ordered arbitrarily.
func (c *Coordinator) Snapshots() []model.SyncGroup {
	c.mu.RLock()
	groups := make([]*group, 0, len(c.groups))
	for _, g := range c.groups {
		groups = append(groups, g)
	}
	c.mu.RUnlock()

	out := make([]model.SyncGroup, 0, len(groups))
	for _, g := range groups {
		g.mu.Lock()
		out = append(out, c.snapshotLocked(g))
		g.mu.Unlock()
	}
	return out
}

func (c *Coordinator) lookup(groupID int) (*group, error) {
	c.mu.RLock()
	g, ok := c.groups[groupID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// snapshotLocked copies the group state; positions of a playing group are
// rolled forward to now. Caller holds g.mu.
func (c *Coordinator) snapshotLocked(g *group) model.SyncGroup {
	snap := g.state
	snap.Members = append([]int(nil), g.state.Members...)
	snap.Items = append([]model.SyncGroupItem(nil), g.state.Items...)
	if snap.State == model.PlaybackPlaying && snap.StartedAt != nil {
		snap.CurrentTime = c.opts.Clock().Sub(*snap.StartedAt).Seconds()
	}
	return snap
}

// mutate runs fn under the group's lock, then persists the resulting
// snapshot, reconciles the tick loop, and emits group-updated. The
// persistence write happens after the lock is released.
func (c *Coordinator) mutate(groupID int, fn func(g *group, now time.Time) error) (model.SyncGroup, error) {
	g, err := c.lookup(groupID)
	if err != nil {
		return model.SyncGroup{}, err
	}

	now := c.opts.Clock()
	g.mu.Lock()
	if err := fn(g, now); err != nil {
		g.mu.Unlock()
		return model.SyncGroup{}, err
	}
	snap := c.snapshotLocked(g)
	g.mu.Unlock()

	if snap.State == model.PlaybackPlaying {
		c.broadcaster.ensureRunning(groupID)
	} else {
		c.broadcaster.stop(groupID)
	}

	if err := c.store.SaveSyncGroupState(snap); err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to persist sync group state")
	}
	c.events.GroupUpdated(snap, now)
	c.broadcaster.pushState(snap, now)
	return snap, nil
}

// Start moves the group to PLAYING on the given content, anchored so the
// authoritative position equals startPosition right now. Legal from any
// state.
func (c *Coordinator) Start(groupID, contentID int, startPosition float64) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		startLocked(g, contentID, startPosition, now)
		return nil
	})
}

func startLocked(g *group, contentID int, startPosition float64, now time.Time) {
	anchor := now.Add(-secondsToDuration(startPosition))
	g.state.State = model.PlaybackPlaying
	g.state.CurrentContentID = &contentID
	g.state.StartedAt = &anchor
	g.state.CurrentTime = startPosition

	// keep the playlist index aligned when the content is a known item.
	// When the current index already points at this content the caller
	// has positioned it (playlists may repeat a content id), so leave
	// it alone rather than snapping back to the first occurrence.
	if g.state.PlaylistIndex >= 0 && g.state.PlaylistIndex < len(g.state.Items) &&
		g.state.Items[g.state.PlaylistIndex].ContentID == contentID {
		return
	}
	for i, item := range g.state.Items {
		if item.ContentID == contentID {
			g.state.PlaylistIndex = i
			break
		}
	}
}

// Pause freezes the authoritative position. PLAYING -> PAUSED.
func (c *Coordinator) Pause(groupID int) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		if g.state.State != model.PlaybackPlaying {
			return ErrInvalidTransition
		}
		if g.state.StartedAt != nil {
			g.state.CurrentTime = now.Sub(*g.state.StartedAt).Seconds()
		}
		g.state.State = model.PlaybackPaused
		g.state.StartedAt = nil
		return nil
	})
}

// Resume continues from the frozen position. PAUSED -> PLAYING.
func (c *Coordinator) Resume(groupID int) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		if g.state.State != model.PlaybackPaused {
			return ErrInvalidTransition
		}
		anchor := now.Add(-secondsToDuration(g.state.CurrentTime))
		g.state.State = model.PlaybackPlaying
		g.state.StartedAt = &anchor
		return nil
	})
}

// Seek repositions playback. While PLAYING the anchor moves and the state
// is unchanged; while PAUSED the frozen position is overwritten.
func (c *Coordinator) Seek(groupID int, position float64) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		switch g.state.State {
		case model.PlaybackPlaying:
			anchor := now.Add(-secondsToDuration(position))
			g.state.StartedAt = &anchor
			g.state.CurrentTime = position
			return nil
		case model.PlaybackPaused:
			g.state.CurrentTime = position
			return nil
		default:
			return ErrInvalidTransition
		}
	})
}

// Stop ends playback and clears the content anchor. PLAYING/PAUSED -> STOPPED.
func (c *Coordinator) Stop(groupID int) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		if g.state.State != model.PlaybackPlaying && g.state.State != model.PlaybackPaused {
			return ErrInvalidTransition
		}
		g.state.State = model.PlaybackStopped
		g.state.CurrentContentID = nil
		g.state.StartedAt = nil
		g.state.CurrentTime = 0
		return nil
	})
}

// Next starts the following playlist item from position zero, wrapping at
// the end of the cycle.
func (c *Coordinator) Next(groupID int) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		return advanceLocked(g, +1, now)
	})
}

// Previous starts the preceding playlist item from position zero.
func (c *Coordinator) Previous(groupID int) (model.SyncGroup, error) {
	return c.mutate(groupID, func(g *group, now time.Time) error {
		return advanceLocked(g, -1, now)
	})
}

func advanceLocked(g *group, step int, now time.Time) error {
	n := len(g.state.Items)
	if n == 0 {
		return ErrInvalidTransition
	}
	idx := (g.state.PlaylistIndex + step) % n
	if idx < 0 {
		idx += n
	}
	g.state.PlaylistIndex = idx
	startLocked(g, g.state.Items[idx].ContentID, 0, now)
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
