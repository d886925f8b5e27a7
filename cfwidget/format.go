package cfwidget

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FormatNumber renders a count in compact en-US notation with floor
// rounding, e.g. 1234 -> "1.2K", 5600000 -> "5.6M".
func FormatNumber(num int64) string {
	units := []struct {
		value  float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}

	n := float64(num)
	for _, u := range units {
		if n < u.value {
			continue
		}
		v := n / u.value
		if v < 10 {
			v = math.Floor(v*10) / 10
			if v == math.Trunc(v) {
				return fmt.Sprintf("%.0f%s", v, u.suffix)
			}
			return fmt.Sprintf("%.1f%s", v, u.suffix)
		}
		return fmt.Sprintf("%.0f%s", math.Floor(v), u.suffix)
	}
	return strconv.FormatInt(num, 10)
}

// FormatFileSize renders a byte count as a human-readable string.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}

	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}

// FormatDate renders a timestamp as a short en-US date ("Mar 5, 2024").
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// CacheDuration returns a cache lifetime in seconds tiered by project
// popularity: metadata of heavily downloaded projects changes slowly
// relative to its fetch cost.
func CacheDuration(downloads int64) int {
	switch {
	case downloads >= 1000000:
		return 604800 // 1 week
	case downloads >= 100000:
		return 86400 // 1 day
	case downloads >= 10000:
		return 7200 // 2 hours
	default:
		return 3600 // 1 hour
	}
}
