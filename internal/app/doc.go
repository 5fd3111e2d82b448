// Package app wires the catalog client, the download pipeline and the playback
// controller into the commands of the CLI, and renders their events for a terminal.
package app
