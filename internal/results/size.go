// Package results turns filtered paths into table rows and orders them.
package results

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is shown when a path's size cannot be read
const NotAvailable = "N/A"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in binary units with one decimal
func FormatSize(n int64) string {
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, sizeUnits[i])
}

// ParseSize reconstructs an approximate byte count from FormatSize output.
// It returns -1 for N/A, empty or unparseable text so those sort lowest.
func ParseSize(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == NotAvailable {
		return -1
	}

	fields := strings.Fields(s)
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || len(fields) > 2 {
		return -1
	}
	if len(fields) == 1 {
		return value
	}

	multiplier := 1.0
	for _, unit := range sizeUnits {
		if strings.EqualFold(fields[1], unit) {
			return value * multiplier
		}
		multiplier *= 1024
	}
	return -1
}
