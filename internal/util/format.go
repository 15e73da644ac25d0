package util //nolint:revive // package name util hosts shared formatting helpers used across command output

import "time"

// FormatRemaining formats the time left on a credential for display.
// Returns "expired" for zero or negative durations, truncates to seconds
// for readability.
func FormatRemaining(d time.Duration) string {
	switch {
	case d <= 0:
		return "expired"
	case d < time.Second:
		return d.String()
	default:
		return d.Truncate(time.Second).String()
	}
}
