// Package event defines the progress and status events published by background
// downloads and playback sessions, the one-directional sink they are published to,
// and a pure formatter rendering events as user-facing text.
package event
