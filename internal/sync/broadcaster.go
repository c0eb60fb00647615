package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
)

// Broadcaster runs one tick loop per PLAYING group and fans the
// authoritative position out to members. Loops are keyed by group id and
// individually cancellable; leaving PLAYING stops the group's loop.
type Broadcaster struct {
	coord    *Coordinator
	channel  Channel
	interval time.Duration
	clock    func() time.Time

	mu    stdsync.Mutex
	loops map[int]context.CancelFunc
}

func newBroadcaster(coord *Coordinator, channel Channel, interval time.Duration, clock func() time.Time) *Broadcaster {
	return &Broadcaster{
		coord:    coord,
		channel:  channel,
		interval: interval,
		clock:    clock,
		loops:    make(map[int]context.CancelFunc),
	}
}

// ensureRunning starts the group's tick loop if it is not already running.
func (b *Broadcaster) ensureRunning(groupID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, running := b.loops[groupID]; running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.loops[groupID] = cancel
	go b.run(ctx, groupID)
}

// stop cancels the group's tick loop if one is running.
func (b *Broadcaster) stop(groupID int) {
	b.mu.Lock()
	cancel, running := b.loops[groupID]
	if running {
		delete(b.loops, groupID)
	}
	b.mu.Unlock()
	if running {
		cancel()
	}
}

func (b *Broadcaster) run(ctx context.Context, groupID int) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	log.Debug().Int("group_id", groupID).Msg("tick loop started")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("group_id", groupID).Msg("tick loop stopped")
			return
		case <-ticker.C:
			b.broadcast(groupID)
		}
	}
}

// broadcast computes the authoritative position for the group and sends
// one tick to every member. A failed send to one display is logged and
// does not affect the others.
func (b *Broadcaster) broadcast(groupID int) {
	g, err := b.coord.lookup(groupID)
	if err != nil {
		b.stop(groupID)
		return
	}

	now := b.clock()
	g.mu.Lock()
	if g.state.State != model.PlaybackPlaying || g.state.StartedAt == nil {
		g.mu.Unlock()
		return
	}

	position := now.Sub(*g.state.StartedAt).Seconds()

	// reaching the end of the current playlist item triggers an
	// implicit advance within the same serialized section
	advanced := false
	if d, ok := currentItemDuration(&g.state); ok && position >= float64(d) {
		if err := advanceLocked(g, +1, now); err == nil {
			position = 0
			advanced = true
		}
	}
	g.state.CurrentTime = position

	tick := Tick{
		GroupID:       groupID,
		ContentID:     g.state.CurrentContentID,
		CurrentTime:   position,
		ServerTime:    now,
		PlaybackState: g.state.State,
	}
	members := append([]int(nil), g.state.Members...)
	var snap model.SyncGroup
	if advanced {
		snap = b.coord.snapshotLocked(g)
	}
	g.mu.Unlock()

	if advanced {
		if err := b.coord.store.SaveSyncGroupState(snap); err != nil {
			log.Error().Err(err).Int("group_id", groupID).Msg("failed to persist implicit advance")
		}
		b.coord.events.GroupUpdated(snap, now)
	}
	b.deliver(tick, members)
}

// pushState sends one immediate tick reflecting a state transition, so
// members do not wait a full period to learn about pauses and stops.
func (b *Broadcaster) pushState(snap model.SyncGroup, now time.Time) {
	tick := Tick{
		GroupID:       snap.ID,
		ContentID:     snap.CurrentContentID,
		CurrentTime:   snap.CurrentTime,
		ServerTime:    now,
		PlaybackState: snap.State,
	}
	b.deliver(tick, snap.Members)
}

// SendSyncState answers a display's explicit request-sync with the
// group's current tick, without waiting for the next period.
func (b *Broadcaster) SendSyncState(groupID, displayID int) error {
	g, err := b.coord.lookup(groupID)
	if err != nil {
		return err
	}

	now := b.clock()
	g.mu.Lock()
	if !g.state.HasMember(displayID) {
		g.mu.Unlock()
		return ErrDisplayNotInGroup
	}
	snap := b.coord.snapshotLocked(g)
	g.mu.Unlock()

	tick := Tick{
		GroupID:       groupID,
		ContentID:     snap.CurrentContentID,
		CurrentTime:   snap.CurrentTime,
		ServerTime:    now,
		PlaybackState: snap.State,
	}
	if err := b.channel.SendToDisplay(displayID, tick); err != nil {
		log.Warn().Err(err).Int("display_id", displayID).Int("group_id", groupID).
			Msg("failed to send sync state")
		return err
	}
	return nil
}

func (b *Broadcaster) deliver(tick Tick, members []int) {
	for _, displayID := range members {
		if err := b.channel.SendToDisplay(displayID, tick); err != nil {
			// best-effort: the next tick supersedes this one
			log.Warn().Err(err).Int("display_id", displayID).Int("group_id", tick.GroupID).
				Msg("tick delivery failed")
		}
	}
}

func currentItemDuration(g *model.SyncGroup) (int, bool) {
	if len(g.Items) == 0 || g.PlaylistIndex >= len(g.Items) {
		return 0, false
	}
	d := g.Items[g.PlaylistIndex].Duration
	if d == nil || *d <= 0 {
		return 0, false
	}
	return *d, true
}
