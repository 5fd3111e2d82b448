package utils

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Static error definitions for better error handling.
var (
	// ErrInvalidSelection indicates that a track selection expression cannot be parsed.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrSelectionOutOfRange indicates that a selected number is outside 1..total.
	ErrSelectionOutOfRange = errors.New("selection out of range")
)

// ParseSelection converts a human selection such as "1,3-5" into sorted zero-based indices.
// Numbers are 1-based and must not exceed total. An empty or "all" expression selects everything.
func ParseSelection(expr string, total int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "all") {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}

		return indices, nil
	}

	seen := make(map[int]struct{})

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		first, last, err := parseRange(part)
		if err != nil {
			return nil, err
		}

		if first < 1 || last > total {
			return nil, fmt.Errorf("%w: '%s' is not within 1-%d", ErrSelectionOutOfRange, part, total)
		}

		for n := first; n <= last; n++ {
			seen[n-1] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidSelection, expr)
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}

	slices.Sort(indices)

	return indices, nil
}

func parseRange(part string) (int, int, error) {
	from, to, isRange := strings.Cut(part, "-")

	first, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidSelection, part)
	}

	if !isRange {
		return first, first, nil
	}

	last, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil || last < first {
		return 0, 0, fmt.Errorf("%w: '%s'", ErrInvalidSelection, part)
	}

	return first, last, nil
}
