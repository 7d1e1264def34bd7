package stac

import (
	"fmt"
	"strings"
	"time"
)

// naiveDatetimeLayout is the FlatItem datetime fallback format named in
// spec.md §9: when a value doesn't parse as RFC 3339, try a naive
// ISO-ish layout before giving up.
const naiveDatetimeLayout = "2006-01-02T15:04:05.999999999"

// ParseDatetime parses a single datetime value permissively: RFC 3339 is
// tried first, then a naive (no offset) ISO layout.
func ParseDatetime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(naiveDatetimeLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("stac: invalid datetime %q", s)
}

// ValidateDatetime validates a single datetime or interval string
// ("a/b", "a/..", "../b", "..", "../..").
func ValidateDatetime(dt string) error {
	if dt == "" {
		return fmt.Errorf("stac: datetime cannot be empty")
	}
	if dt == ".." || dt == "../.." {
		return nil
	}
	if strings.Contains(dt, "/") {
		_, _, err := ParseDatetimeInterval(dt)
		return err
	}
	_, err := ParseDatetime(dt)
	return err
}

// ParseDatetimeInterval parses a STAC datetime interval into its start and
// end bounds. Either side may be open ("..").  "../.." or ".." means both
// sides are open. At least one side of an interval must be a parseable
// datetime; a fully closed interval with start after end fails with
// ErrStartIsAfterEnd, and "../.." is accepted but carries no bounds (callers
// that require at least one bound should reject it explicitly with
// ErrEmptyDatetimeInterval, matching the EmptyDatetimeInterval case named in
// spec.md §7).
func ParseDatetimeInterval(dt string) (start, end *time.Time, err error) {
	if dt == "" {
		return nil, nil, fmt.Errorf("stac: datetime interval cannot be empty")
	}
	if dt == ".." || dt == "../.." {
		return nil, nil, nil
	}
	parts := strings.Split(dt, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("stac: invalid datetime interval %q, expected 'start/end'", dt)
	}
	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	if startStr != "" && startStr != ".." {
		t, perr := ParseDatetime(startStr)
		if perr != nil {
			return nil, nil, fmt.Errorf("stac: invalid start datetime: %w", perr)
		}
		start = &t
	}
	if endStr != "" && endStr != ".." {
		t, perr := ParseDatetime(endStr)
		if perr != nil {
			return nil, nil, fmt.Errorf("stac: invalid end datetime: %w", perr)
		}
		end = &t
	}
	if start == nil && end == nil {
		return nil, nil, fmt.Errorf("stac: datetime interval %q has no bounds: %w", dt, ErrEmptyDatetimeInterval)
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, ErrStartIsAfterEnd
	}
	return start, end, nil
}
