package execlog

import (
	"fmt"
	"math"
	"strconv"
)

// FormatDuration renders a millisecond duration for log lines:
// sub-second as "500ms", sub-minute as fractional seconds "1.5s",
// anything longer as "1m 5s" with the seconds rounded.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	seconds := float64(ms) / 1000
	if ms < 60000 {
		return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
	}

	minutes := int64(seconds) / 60
	rounded := int64(math.Round(math.Mod(seconds, 60)))
	return fmt.Sprintf("%dm %ds", minutes, rounded)
}
