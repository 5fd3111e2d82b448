// Package http provides the round trippers wrapped around every catalog request:
// debug logging of request/response dumps and User-Agent injection.
package http
