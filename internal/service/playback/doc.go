// Package playback plays album tracks one at a time.
// A Controller owns a single session whose resolve, play and retry rules are
// expressed by the pure Transition function.
package playback
