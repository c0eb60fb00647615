package sync

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomcast/roomcast/internal/model"
)

// CommandType enumerates the external playback commands.
type CommandType string

const (
	CommandPlay     CommandType = "play"
	CommandPause    CommandType = "pause"
	CommandSeek     CommandType = "seek"
	CommandStop     CommandType = "stop"
	CommandNext     CommandType = "next"
	CommandPrevious CommandType = "previous"
	CommandRestart  CommandType = "restart"
)

// Command is a playback instruction from an administrator or the
// conductor's report path. Timestamp orders near-simultaneous commands
// for the same group; stale ones are rejected, not applied.
type Command struct {
	Type      CommandType `json:"type" binding:"required"`
	GroupID   int         `json:"group_id"`
	ContentID *int        `json:"content_id,omitempty"`
	SeekTo    *float64    `json:"seek_to,omitempty"`
	Timestamp time.Time   `json:"timestamp" binding:"required"`
}

// Router validates and serializes external commands into the
// coordinator. It does not push state to clients itself; the tick
// broadcast propagates the result.
type Router struct {
	coord *Coordinator
}

func NewRouter(coord *Coordinator) *Router {
	return &Router{coord: coord}
}

// Apply validates the command and applies it to the group's state
// machine. Returns the resulting snapshot, or one of ErrGroupNotFound,
// ErrStaleCommand, ErrInvalidTransition.
//
// The staleness check and the dispatch run under one per-group command
// lock, so two racing commands cannot both pass the check and apply out
// of order. A command only advances the ordering clock once it has been
// accepted; rejected commands leave the clock untouched so an older
// valid command can still land after them.
func (r *Router) Apply(cmd Command) (model.SyncGroup, error) {
	g, err := r.coord.lookup(cmd.GroupID)
	if err != nil {
		return model.SyncGroup{}, err
	}
	g.cmdMu.Lock()
	defer g.cmdMu.Unlock()

	if cmd.Timestamp.Before(g.lastCommandAt) {
		log.Warn().
			Str("type", string(cmd.Type)).
			Int("group_id", cmd.GroupID).
			Time("timestamp", cmd.Timestamp).
			Msg("rejected stale command")
		return model.SyncGroup{}, ErrStaleCommand
	}

	snap, err := r.dispatch(cmd)
	if err != nil {
		log.Warn().Err(err).
			Str("type", string(cmd.Type)).
			Int("group_id", cmd.GroupID).
			Msg("command rejected")
		return model.SyncGroup{}, err
	}
	g.lastCommandAt = cmd.Timestamp

	log.Info().
		Str("type", string(cmd.Type)).
		Int("group_id", cmd.GroupID).
		Str("state", string(snap.State)).
		Msg("command applied")
	r.coord.events.CommandApplied(cmd.GroupID, cmd, r.coord.opts.Clock())
	return snap, nil
}

func (r *Router) dispatch(cmd Command) (model.SyncGroup, error) {
	switch cmd.Type {
	case CommandPlay:
		return r.play(cmd)
	case CommandPause:
		return r.coord.Pause(cmd.GroupID)
	case CommandSeek:
		if cmd.SeekTo == nil {
			return model.SyncGroup{}, fmt.Errorf("seek command requires seek_to: %w", ErrInvalidTransition)
		}
		return r.coord.Seek(cmd.GroupID, *cmd.SeekTo)
	case CommandStop:
		return r.coord.Stop(cmd.GroupID)
	case CommandNext:
		return r.coord.Next(cmd.GroupID)
	case CommandPrevious:
		return r.coord.Previous(cmd.GroupID)
	case CommandRestart:
		return r.restart(cmd)
	default:
		return model.SyncGroup{}, fmt.Errorf("unknown command type %q: %w", cmd.Type, ErrInvalidTransition)
	}
}

// play with a content id starts that content; without one it resumes a
// paused group, or restarts the current or first playlist item.
func (r *Router) play(cmd Command) (model.SyncGroup, error) {
	position := 0.0
	if cmd.SeekTo != nil {
		position = *cmd.SeekTo
	}
	if cmd.ContentID != nil {
		return r.coord.Start(cmd.GroupID, *cmd.ContentID, position)
	}

	snap, err := r.coord.Snapshot(cmd.GroupID)
	if err != nil {
		return model.SyncGroup{}, err
	}
	switch {
	case snap.State == model.PlaybackPaused:
		return r.coord.Resume(cmd.GroupID)
	case snap.CurrentContentID != nil:
		return r.coord.Start(cmd.GroupID, *snap.CurrentContentID, position)
	case len(snap.Items) > 0:
		return r.coord.Start(cmd.GroupID, snap.Items[0].ContentID, position)
	default:
		return model.SyncGroup{}, fmt.Errorf("play without content on empty group: %w", ErrInvalidTransition)
	}
}

func (r *Router) restart(cmd Command) (model.SyncGroup, error) {
	snap, err := r.coord.Snapshot(cmd.GroupID)
	if err != nil {
		return model.SyncGroup{}, err
	}
	if snap.CurrentContentID == nil {
		return model.SyncGroup{}, fmt.Errorf("restart with no current content: %w", ErrInvalidTransition)
	}
	return r.coord.Start(cmd.GroupID, *snap.CurrentContentID, 0)
}
