// Package utils holds small helpers shared across the application:
// filename sanitizing, context-aware pauses, track selection parsing and User-Agent providers.
package utils
