package contextutils

import (
	"time"
)

// DisplayZoneName is the label attached to widget timestamps.
// Message times are always rendered in Philippine Time (UTC+8) regardless
// of the viewer's locale.
const DisplayZoneName = "PHT"

// displayZoneOffsetSeconds is the fixed UTC+8 offset for PHT.
const displayZoneOffsetSeconds = 8 * 60 * 60

var displayZone = time.FixedZone(DisplayZoneName, displayZoneOffsetSeconds)

// DisplayZone returns the fixed UTC+8 location used for all message timestamps.
func DisplayZone() *time.Location {
	return displayZone
}

// ConvertToDisplayZone converts the provided time to the fixed display zone.
func ConvertToDisplayZone(t time.Time) time.Time {
	return t.In(displayZone)
}

// FormatInDisplayZone formats the provided time in the fixed display zone
// using the given layout. The zero time formats to an empty string so that
// unreconciled timestamps render as blank rather than the epoch.
func FormatInDisplayZone(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.In(displayZone).Format(layout)
}

// ParseMessageTimestamp parses an ISO-8601 timestamp as produced by the
// message backend. Timestamps without an explicit offset are interpreted as
// UTC, matching how the backend records them.
func ParseMessageTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		return time.Time{}, WrapError(err, "invalid timestamp format")
	}
	return t, nil
}
