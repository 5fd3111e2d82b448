package event

import "time"

// Kind identifies the type of an event.
type Kind string

// Download event kinds.
const (
	KindPreparing        Kind = "preparing"
	KindDownloadProgress Kind = "download_progress"
	KindProcessing       Kind = "processing"
	KindMovingFiles      Kind = "moving_files"
	KindTrackFailed      Kind = "track_failed"
	KindCancelled        Kind = "cancelled"
	KindSucceeded        Kind = "succeeded"
	KindBatchFailed      Kind = "batch_failed"
	KindValidationFailed Kind = "validation_failed"
)

// Playback event kinds.
const (
	KindPreparingToPlay Kind = "preparing_to_play"
	KindFetchingStream  Kind = "fetching_stream"
	KindPlaying         Kind = "playing"
	KindRetrying        Kind = "retrying"
	KindPlaybackFailed  Kind = "playback_failed"
	KindUnavailable     Kind = "unavailable"
	KindNotFound        Kind = "not_found"
	KindStopped         Kind = "stopped"
	KindFinished        Kind = "finished"
)

// Event is a single progress or status notification.
type Event interface {
	// Kind returns the event type.
	Kind() Kind
}

// TrackRef identifies the track an event is about.
type TrackRef struct {
	// Index is the zero-based position of the track in its album.
	Index int
	// Position is the 1-based position of the track inside the batch.
	Position int
	// Total is the number of tracks in the batch.
	Total int
	// Title is the display title of the track.
	Title string
}

// Preparing announces that work on a track is starting.
type Preparing struct {
	TrackRef
}

// DownloadProgress reports how much of a track has been fetched.
type DownloadProgress struct {
	TrackRef

	// Fraction is the completed share of the fetch in [0, 1].
	Fraction float64
	// BytesRead is the number of bytes fetched so far.
	BytesRead int64
	// TotalBytes is the expected size, -1 when unknown.
	TotalBytes int64
}

// Percent returns the progress as a whole percentage in [0, 100].
func (e DownloadProgress) Percent() int {
	return int(e.Fraction*100 + 0.5) //nolint:mnd // Rounding to the nearest percent.
}

// Processing announces that a fetched track is being tagged.
type Processing struct {
	TrackRef
}

// MovingFiles announces that a track is being moved into the output directory.
type MovingFiles struct {
	TrackRef

	// Destination is the final path of the file.
	Destination string
}

// Phase is the pipeline step a track failed in.
type Phase string

// Pipeline phases.
const (
	PhaseFetching   Phase = "fetching"
	PhaseTagging    Phase = "tagging"
	PhaseRelocating Phase = "relocating"
)

// TrackFailed reports that a single track failed. The batch continues.
type TrackFailed struct {
	TrackRef

	// Phase is the step that failed.
	Phase Phase
	// Reason is the error text.
	Reason string
}

// Cancelled is the terminal event of a batch stopped by the caller.
type Cancelled struct {
	// Completed is the number of tracks finished before cancellation.
	Completed int
}

// Succeeded is the terminal event of a batch with at least one finished track.
type Succeeded struct {
	// Count is the number of successfully downloaded tracks.
	Count int
	// Failed is the number of tracks that failed.
	Failed int
}

// BatchFailed is the terminal event of a batch in which no track succeeded.
type BatchFailed struct {
	// Failed is the number of tracks that failed.
	Failed int
}

// ValidationFailed is the terminal event of a batch rejected before any work.
type ValidationFailed struct {
	// Reason is the validation error text.
	Reason string
}

// PreparingToPlay announces that a new playback session is starting.
type PreparingToPlay struct {
	TrackRef
}

// FetchingStream announces that the stream of a track is being resolved.
type FetchingStream struct {
	TrackRef
}

// Playing announces that audio is being played.
type Playing struct {
	TrackRef

	// Artist is the track artist.
	Artist string
}

// Retrying announces another attempt after a playback failure.
type Retrying struct {
	TrackRef

	// Attempt is the 1-based retry number.
	Attempt int
	// Max is the maximum number of retries.
	Max int
	// Reason is the text of the failure that caused the retry.
	Reason string
}

// PlaybackFailed is reported once retries for a track are exhausted.
type PlaybackFailed struct {
	TrackRef

	// Reason is the text of the last failure.
	Reason string
}

// Unavailable reports that an album cannot be played or downloaded.
type Unavailable struct {
	// AlbumID is the catalog ID of the album.
	AlbumID string
}

// NotFound reports that the requested track does not exist in the album.
type NotFound struct {
	// AlbumID is the catalog ID of the album.
	AlbumID string
	// Index is the requested zero-based index.
	Index int
}

// Stopped reports that playback was stopped by the caller.
type Stopped struct{}

// Finished reports that the last track of the album finished playing.
type Finished struct {
	// AlbumID is the catalog ID of the album.
	AlbumID string
}

// Kind implements Event.
func (Preparing) Kind() Kind { return KindPreparing }

// Kind implements Event.
func (DownloadProgress) Kind() Kind { return KindDownloadProgress }

// Kind implements Event.
func (Processing) Kind() Kind { return KindProcessing }

// Kind implements Event.
func (MovingFiles) Kind() Kind { return KindMovingFiles }

// Kind implements Event.
func (TrackFailed) Kind() Kind { return KindTrackFailed }

// Kind implements Event.
func (Cancelled) Kind() Kind { return KindCancelled }

// Kind implements Event.
func (Succeeded) Kind() Kind { return KindSucceeded }

// Kind implements Event.
func (BatchFailed) Kind() Kind { return KindBatchFailed }

// Kind implements Event.
func (ValidationFailed) Kind() Kind { return KindValidationFailed }

// Kind implements Event.
func (PreparingToPlay) Kind() Kind { return KindPreparingToPlay }

// Kind implements Event.
func (FetchingStream) Kind() Kind { return KindFetchingStream }

// Kind implements Event.
func (Playing) Kind() Kind { return KindPlaying }

// Kind implements Event.
func (Retrying) Kind() Kind { return KindRetrying }

// Kind implements Event.
func (PlaybackFailed) Kind() Kind { return KindPlaybackFailed }

// Kind implements Event.
func (Unavailable) Kind() Kind { return KindUnavailable }

// Kind implements Event.
func (NotFound) Kind() Kind { return KindNotFound }

// Kind implements Event.
func (Stopped) Kind() Kind { return KindStopped }

// Kind implements Event.
func (Finished) Kind() Kind { return KindFinished }

// IsTerminal reports whether e ends a download batch.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case Cancelled, Succeeded, BatchFailed, ValidationFailed:
		return true
	default:
		return false
	}
}

// Message wraps an event with its origin and ordering information.
type Message struct {
	// JobID is the ID of the batch or playback session that produced the event.
	JobID string
	// Seq increases by one for each event of the same job, starting at 1.
	Seq uint64
	// Time is the moment the event was produced.
	Time time.Time
	// Event is the payload.
	Event Event
}
