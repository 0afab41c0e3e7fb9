package tasks

import (
	"fmt"
	"time"

	"songcal/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadLibrary Phase = iota
	ResolveSongs
	CacheHit
	SkipSong
	Pause
	Checkpoint
	AssignDays
	WriteCalendar
)

func (p Phase) String() string {
	switch p {
	case LoadLibrary:
		return "load_library"
	case ResolveSongs:
		return "resolve_songs"
	case CacheHit:
		return "cache_hit"
	case SkipSong:
		return "skip_song"
	case Pause:
		return "pause"
	case Checkpoint:
		return "checkpoint"
	case AssignDays:
		return "assign_days"
	case WriteCalendar:
		return "write_calendar"
	default:
		return ""
	}
}

func resolvingUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.Artist, song.Name),
	}
}

func resolvedUpdate(step, total int, match *models.ResolvedMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s (%s)", step, total, match.MatchedArtist, match.MatchedTitle, match.Tier),
		Data:    match,
	}
}

func cacheHitUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheHit,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s (cached)", step, total, song.Artist, song.Name),
	}
}

func skipUpdate(step, total int, song models.Song, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %s", step, total, song.Artist, song.Name, reason),
	}
}

func breakUpdate(step, total int, d time.Duration) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Pause,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Taking a %s break...", d.Round(time.Second)),
	}
}

func checkpointUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Checkpoint,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Checkpoint saved (%d/%d days)", step, total),
	}
}
