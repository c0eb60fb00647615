package resolver

// SourceType tags the variant of a resolution result.
type SourceType string

const (
	SourceAlert    SourceType = "alert"
	SourceSync     SourceType = "sync"
	SourceSchedule SourceType = "schedule"
	SourcePlaylist SourceType = "playlist"
	SourceFallback SourceType = "fallback"
	SourceNone     SourceType = "none"
)

// Priority bands. Alerts and schedules add their own priority on top of
// the band base; the rest are fixed.
const (
	alertBand    = 1000
	syncPriority = 500
	scheduleBand = 100
	playlistPrio = 0
	fallbackPrio = -1
)

// Resolution is the outcome of resolving what a display must show. It is
// a closed set of variants; the sealed method keeps external packages
// from adding cases so switches over variants stay exhaustive.
type Resolution interface {
	Type() SourceType
	Priority() int
	Reason() string
	sealed()
}

// AlertContent wins over every other source.
type AlertContent struct {
	AlertID   int
	ContentID int
	Score     int
}

func (AlertContent) Type() SourceType { return SourceAlert }
func (a AlertContent) Priority() int  { return a.Score }
func (AlertContent) Reason() string   { return "Active alert" }
func (AlertContent) sealed()          {}

// SyncContent directs the display to follow its sync group.
type SyncContent struct {
	GroupID   int
	ContentID *int
}

func (SyncContent) Type() SourceType { return SourceSync }
func (SyncContent) Priority() int    { return syncPriority }
func (SyncContent) Reason() string   { return "Active sync group" }
func (SyncContent) sealed()          {}

// ScheduledContent is a live schedule window.
type ScheduledContent struct {
	ScheduleID int
	WindowID   int
	ContentID  int
	Score      int
}

func (ScheduledContent) Type() SourceType { return SourceSchedule }
func (s ScheduledContent) Priority() int  { return s.Score }
func (ScheduledContent) Reason() string   { return "Active schedule" }
func (ScheduledContent) sealed()          {}

// PlaylistContent signals playlist mode; the display runtime advances
// through the ordered items itself.
type PlaylistContent struct{}

func (PlaylistContent) Type() SourceType { return SourcePlaylist }
func (PlaylistContent) Priority() int    { return playlistPrio }
func (PlaylistContent) Reason() string   { return "Playlist rotation" }
func (PlaylistContent) sealed()          {}

// FallbackContent is the display's configured last resort.
type FallbackContent struct {
	ContentID int
}

func (FallbackContent) Type() SourceType { return SourceFallback }
func (FallbackContent) Priority() int    { return fallbackPrio }
func (FallbackContent) Reason() string   { return "Fallback content" }
func (FallbackContent) sealed()          {}

// NoContent is a first-class result, not an error.
type NoContent struct {
	Why string
}

func (NoContent) Type() SourceType { return SourceNone }
func (NoContent) Priority() int    { return fallbackPrio - 1 }
func (n NoContent) Reason() string { return n.Why }
func (NoContent) sealed()          {}
