// Package format renders sizes, durations, numbers and dates for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout     = "Jan 2, 2006"
	DateTimeLayout = "Jan 2, 2006, 3:04 PM"

	// DefaultTruncate is the length Truncate cuts at when given zero.
	DefaultTruncate = 100
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB"}

// FileSize renders bytes with a 1024 base and at most two decimals,
// trailing zeros removed: 1536 -> "1.5 KB".
func FileSize(bytes int64) string {
	return FileSizeDecimals(bytes, 2)
}

// FileSizeDecimals is FileSize with a chosen precision.
func FileSizeDecimals(bytes int64, decimals int) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// Duration renders seconds as mm:ss, or hh:mm:ss from one hour up.
// Negative and NaN inputs render as "00:00".
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "00:00"
	}
	total := int64(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

var (
	printerMu sync.Mutex
	printer   = message.NewPrinter(language.English)
)

// Number renders n with English thousands separators.
func Number(n int64) string {
	printerMu.Lock()
	defer printerMu.Unlock()
	return printer.Sprintf("%d", n)
}

// Percentage renders value with one decimal: 65 -> "65.0%".
func Percentage(value float64) string {
	return PercentageDecimals(value, 1)
}

// PercentageDecimals is Percentage with a chosen precision.
func PercentageDecimals(value float64, decimals int) string {
	return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
}

// Phone formats ten digit numbers as "(xxx) xxx-xxxx" and longer ones with a
// leading country code. Anything shorter is returned unchanged.
func Phone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()

	switch n := len(d); {
	case n == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	case n > 10:
		cc, rest := d[:n-10], d[n-10:]
		return fmt.Sprintf("+%s (%s) %s-%s", cc, rest[:3], rest[3:6], rest[6:])
	default:
		return phone
	}
}

// Relative describes t relative to now: "Just now", "5 minutes ago",
// "Yesterday", "3 weeks ago". The distance is absolute, so future times read
// the same way.
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	days := int(diff / (24 * time.Hour))
	switch {
	case days == 0:
		hours := int(diff / time.Hour)
		if hours == 0 {
			minutes := int(diff / time.Minute)
			if minutes == 0 {
				return "Just now"
			}
			return plural(minutes, "minute") + " ago"
		}
		return plural(hours, "hour") + " ago"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return plural(days, "day") + " ago"
	case days < 30:
		return plural(days/7, "week") + " ago"
	case days < 365:
		return plural(days/30, "month") + " ago"
	default:
		return plural(days/365, "year") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// Truncate cuts text to max runes and appends "...". A max of zero means
// DefaultTruncate.
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultTruncate
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max]) + "..."
}

// Date renders t as "Apr 15, 2025"; the zero time renders empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DateTime renders t as "Apr 15, 2025, 2:30 PM".
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}
