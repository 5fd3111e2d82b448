package playback

import "fmt"

// MaxRetries is the number of playback retries made for one track before giving up.
const MaxRetries = 3

// State is the state of a playback session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateResolving
	StatePlaying
	StateRetrying
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StatePlaying:
		return "playing"
	case StateRetrying:
		return "retrying"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is a snapshot of the playback of one album.
type Session struct {
	// ID identifies the session in events and logs.
	ID string
	// AlbumID is the catalog ID of the album being played.
	AlbumID string
	// Cursor is the zero-based index of the current track.
	Cursor int
	// TrackCount is the number of tracks in the album.
	TrackCount int
	// Retries is the number of retries made for the current track, at most MaxRetries.
	Retries int
	// State is the current state.
	State State
}

// InputKind identifies something that happened to a session.
type InputKind int

// Session inputs.
const (
	// InputPlay asks for the track at Input.Index.
	InputPlay InputKind = iota
	// InputResolved reports that the stream of the current track was resolved.
	InputResolved
	// InputFailed reports that resolving or playing the current track failed.
	InputFailed
	// InputRetryDue reports that the pause before a retry elapsed.
	InputRetryDue
	// InputEnded reports that the current track played to the end.
	InputEnded
	// InputNext asks for the following track.
	InputNext
	// InputPrevious asks for the preceding track.
	InputPrevious
	// InputStop stops playback.
	InputStop
	// InputUnplayable reports that the current track has no stream source and cannot succeed.
	InputUnplayable
)

// Input is a single stimulus of the state machine.
type Input struct {
	Kind InputKind
	// Index is the requested track for InputPlay.
	Index int
}

// Effect is the action a Controller must take after a transition.
type Effect int

// Transition effects.
const (
	// EffectNone means nothing is to be done.
	EffectNone Effect = iota
	// EffectResolve means the stream of the track at the cursor must be resolved.
	EffectResolve
	// EffectPlay means the resolved stream must be played.
	EffectPlay
	// EffectScheduleRetry means the track must be resolved again after a pause.
	EffectScheduleRetry
	// EffectGiveUp means the track is not attempted again.
	EffectGiveUp
	// EffectFinish means the session played past its last track.
	EffectFinish
	// EffectStop means playback was stopped on request.
	EffectStop
	// EffectNotFound means the requested track does not exist.
	EffectNotFound
)

// Transition applies in to s and returns the new session with the effect to carry out.
// It has no side effects.
//
//nolint:cyclop // One branch per input.
func Transition(s Session, in Input) (Session, Effect) {
	switch in.Kind {
	case InputPlay:
		if in.Index < 0 || in.Index >= s.TrackCount {
			return s, EffectNotFound
		}

		return moveTo(s, in.Index), EffectResolve
	case InputResolved:
		if s.State != StateResolving {
			return s, EffectNone
		}

		s.State = StatePlaying

		return s, EffectPlay
	case InputFailed:
		if s.State != StateResolving && s.State != StatePlaying {
			return s, EffectNone
		}

		if s.Retries < MaxRetries {
			s.Retries++
			s.State = StateRetrying

			return s, EffectScheduleRetry
		}

		s.State = StateFailed

		return s, EffectGiveUp
	case InputUnplayable:
		if s.State != StateResolving && s.State != StatePlaying {
			return s, EffectNone
		}

		s.State = StateFailed

		return s, EffectGiveUp
	case InputRetryDue:
		if s.State != StateRetrying {
			return s, EffectNone
		}

		s.State = StateResolving

		return s, EffectResolve
	case InputEnded:
		if s.State != StatePlaying {
			return s, EffectNone
		}

		return advance(s)
	case InputNext:
		return advance(s)
	case InputPrevious:
		return moveTo(s, max(s.Cursor-1, 0)), EffectResolve
	case InputStop:
		s.State = StateIdle
		s.Retries = 0

		return s, EffectStop
	default:
		return s, EffectNone
	}
}

func advance(s Session) (Session, Effect) {
	if s.Cursor+1 >= s.TrackCount {
		s.State = StateIdle
		s.Retries = 0

		return s, EffectFinish
	}

	return moveTo(s, s.Cursor+1), EffectResolve
}

func moveTo(s Session, index int) Session {
	s.Cursor = index
	s.Retries = 0
	s.State = StateResolving

	return s
}
