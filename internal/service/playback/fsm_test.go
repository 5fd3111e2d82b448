package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTransition tests single transitions of the state machine.
func TestTransition(t *testing.T) {
	t.Parallel()

	base := Session{ID: "s", AlbumID: "a", TrackCount: 3}

	tests := []struct {
		name     string
		session  Session
		input    Input
		expected Session
		effect   Effect
	}{
		{
			name:     "play resets retries",
			session:  Session{TrackCount: 3, Cursor: 2, Retries: 2, State: StateRetrying},
			input:    Input{Kind: InputPlay, Index: 1},
			expected: Session{TrackCount: 3, Cursor: 1, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "play out of range",
			session:  base,
			input:    Input{Kind: InputPlay, Index: 5},
			expected: base,
			effect:   EffectNotFound,
		},
		{
			name:     "play negative index",
			session:  base,
			input:    Input{Kind: InputPlay, Index: -1},
			expected: base,
			effect:   EffectNotFound,
		},
		{
			name:     "resolved starts playing",
			session:  Session{TrackCount: 3, State: StateResolving},
			input:    Input{Kind: InputResolved},
			expected: Session{TrackCount: 3, State: StatePlaying},
			effect:   EffectPlay,
		},
		{
			name:     "resolved is ignored while idle",
			session:  Session{TrackCount: 3, State: StateIdle},
			input:    Input{Kind: InputResolved},
			expected: Session{TrackCount: 3, State: StateIdle},
			effect:   EffectNone,
		},
		{
			name:     "first failure schedules a retry",
			session:  Session{TrackCount: 3, State: StateResolving},
			input:    Input{Kind: InputFailed},
			expected: Session{TrackCount: 3, Retries: 1, State: StateRetrying},
			effect:   EffectScheduleRetry,
		},
		{
			name:     "failure while playing schedules a retry",
			session:  Session{TrackCount: 3, Retries: 2, State: StatePlaying},
			input:    Input{Kind: InputFailed},
			expected: Session{TrackCount: 3, Retries: 3, State: StateRetrying},
			effect:   EffectScheduleRetry,
		},
		{
			name:     "failure after the last retry gives up",
			session:  Session{TrackCount: 3, Retries: MaxRetries, State: StateResolving},
			input:    Input{Kind: InputFailed},
			expected: Session{TrackCount: 3, Retries: MaxRetries, State: StateFailed},
			effect:   EffectGiveUp,
		},
		{
			name:     "failure is ignored once failed",
			session:  Session{TrackCount: 3, Retries: MaxRetries, State: StateFailed},
			input:    Input{Kind: InputFailed},
			expected: Session{TrackCount: 3, Retries: MaxRetries, State: StateFailed},
			effect:   EffectNone,
		},
		{
			name:     "unplayable track gives up without retries",
			session:  Session{TrackCount: 3, State: StateResolving},
			input:    Input{Kind: InputUnplayable},
			expected: Session{TrackCount: 3, State: StateFailed},
			effect:   EffectGiveUp,
		},
		{
			name:     "unplayable is ignored while retrying",
			session:  Session{TrackCount: 3, Retries: 1, State: StateRetrying},
			input:    Input{Kind: InputUnplayable},
			expected: Session{TrackCount: 3, Retries: 1, State: StateRetrying},
			effect:   EffectNone,
		},
		{
			name:     "retry due resolves again",
			session:  Session{TrackCount: 3, Retries: 1, State: StateRetrying},
			input:    Input{Kind: InputRetryDue},
			expected: Session{TrackCount: 3, Retries: 1, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "stale retry is ignored",
			session:  Session{TrackCount: 3, State: StateIdle},
			input:    Input{Kind: InputRetryDue},
			expected: Session{TrackCount: 3, State: StateIdle},
			effect:   EffectNone,
		},
		{
			name:     "end of track advances",
			session:  Session{TrackCount: 3, Cursor: 0, State: StatePlaying},
			input:    Input{Kind: InputEnded},
			expected: Session{TrackCount: 3, Cursor: 1, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "end of last track finishes",
			session:  Session{TrackCount: 3, Cursor: 2, State: StatePlaying},
			input:    Input{Kind: InputEnded},
			expected: Session{TrackCount: 3, Cursor: 2, State: StateIdle},
			effect:   EffectFinish,
		},
		{
			name:     "next during retry resets retries",
			session:  Session{TrackCount: 3, Cursor: 0, Retries: 2, State: StateRetrying},
			input:    Input{Kind: InputNext},
			expected: Session{TrackCount: 3, Cursor: 1, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "next at the last track finishes",
			session:  Session{TrackCount: 3, Cursor: 2, State: StatePlaying},
			input:    Input{Kind: InputNext},
			expected: Session{TrackCount: 3, Cursor: 2, State: StateIdle},
			effect:   EffectFinish,
		},
		{
			name:     "previous moves back",
			session:  Session{TrackCount: 3, Cursor: 2, Retries: 1, State: StateRetrying},
			input:    Input{Kind: InputPrevious},
			expected: Session{TrackCount: 3, Cursor: 1, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "previous at the first track restarts it",
			session:  Session{TrackCount: 3, Cursor: 0, State: StatePlaying},
			input:    Input{Kind: InputPrevious},
			expected: Session{TrackCount: 3, Cursor: 0, State: StateResolving},
			effect:   EffectResolve,
		},
		{
			name:     "stop from any state",
			session:  Session{TrackCount: 3, Cursor: 1, Retries: 2, State: StateRetrying},
			input:    Input{Kind: InputStop},
			expected: Session{TrackCount: 3, Cursor: 1, State: StateIdle},
			effect:   EffectStop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session, effect := Transition(tt.session, tt.input)

			assert.Equal(t, tt.expected, session)
			assert.Equal(t, tt.effect, effect)
		})
	}
}

// TestTransition_RetryCycle tests that four consecutive failures produce three retries.
func TestTransition_RetryCycle(t *testing.T) {
	t.Parallel()

	session, effect := Transition(Session{TrackCount: 1}, Input{Kind: InputPlay})
	assert.Equal(t, EffectResolve, effect)

	var effects []Effect

	for range MaxRetries + 1 {
		session, effect = Transition(session, Input{Kind: InputFailed})
		effects = append(effects, effect)

		if effect == EffectScheduleRetry {
			session, effect = Transition(session, Input{Kind: InputRetryDue})
			assert.Equal(t, EffectResolve, effect)
		}
	}

	assert.Equal(t, []Effect{
		EffectScheduleRetry,
		EffectScheduleRetry,
		EffectScheduleRetry,
		EffectGiveUp,
	}, effects)
	assert.Equal(t, StateFailed, session.State)
	assert.Equal(t, MaxRetries, session.Retries)
}

// TestState_String tests state names.
func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "retrying", StateRetrying.String())
	assert.Equal(t, "state(42)", State(42).String())
}
