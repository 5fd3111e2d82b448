// Package download implements the background download pipeline.
// A batch of album tracks is fetched into a staging folder, tagged in place
// and moved into the output directory, one track at a time, while progress
// events are published to an event sink.
package download
