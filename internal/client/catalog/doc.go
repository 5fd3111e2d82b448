// Package catalog is the client of the remote music catalog.
// It resolves album metadata over GraphQL (with an in-memory LRU cache),
// resolves per-track stream sources over the REST API and streams audio and artwork bytes.
// The package also defines the immutable domain model (Album, Track, StreamSource)
// consumed by the download pipeline and the playback controller.
package catalog
