package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatNumber groups digits by thousands with spaces: 1234567 -> "1 234 567".
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Genitive month names for "5 марта в 12:00" labels.
var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var lotTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLotTime parses the ISO-like datetime string carried by lot records.
func ParseLotTime(value string) (time.Time, bool) {
	for _, layout := range lotTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRuDatetime renders "5 марта в 12:00". Unparseable input is returned
// as is so a broken record stays visible instead of vanishing.
func FormatRuDatetime(value string) string {
	t, ok := ParseLotTime(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%d %s в %02d:%02d", t.Day(), ruMonths[t.Month()-1], t.Hour(), t.Minute())
}

// FormatCountdown renders a duration as "1д 2ч 3 мин 4 сек".
// Elapsed deadlines clamp to zero.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dд %dч %d мин %d сек", days, hours, mins, secs)
}
