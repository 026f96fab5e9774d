package format

import (
	"fmt"
	"math"
	"strconv"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	var buf [20]byte
	frac := float64(b) / float64(div)
	s := strconv.AppendFloat(buf[:0], frac, 'f', 1, 64)
	suffix := []string{"KB", "MB", "GB", "TB"}[exp]
	return string(s) + " " + suffix
}

// Clock renders seconds as H:MM:SS, the way converters print durations.
// Fractions are rounded to the nearest second; negative input renders as 0:00:00.
func Clock(sec float64) string {
	if sec <= 0 || math.IsNaN(sec) {
		return "0:00:00"
	}
	total := int64(math.Round(sec))
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}
