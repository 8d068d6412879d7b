package cli

import (
	"fmt"
	"time"
)

// FormatSize renders a byte count as fixed-width 7-char SI unit text,
// e.g. " 999.9KB". Sizes below 1KB still display in KB so columns align.
func FormatSize(sizeBytes int64) string {
	value := float64(sizeBytes) / 1000.0
	units := []string{"KB", "MB", "GB", "TB"}
	idx := 0

	// Avoid displaying 1000.0 at a lower unit due to rounding.
	for idx < len(units)-1 && value >= 999.95 {
		value /= 1000.0
		idx++
	}
	return fmt.Sprintf("%5.1f%s", value, units[idx])
}

// formatListTime renders a compact MM-DD HH:MM stamp for list rows.
func formatListTime(t time.Time) string {
	if t.IsZero() {
		return "??-?? ??:??"
	}
	return t.Local().Format("01-02 15:04")
}

// formatTSVTime renders a full local timestamp for script consumption.
func formatTSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
