package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// dateLanguages are the languages upstream listings are written in.
var dateLanguages = []string{"zh", "en"}

var digitsPattern = regexp.MustCompile(`^\d{10}(\d{3})?$`)

// ParseTime resolves an upstream timestamp. The adapter supplied layout is
// tried first, then unix seconds or milliseconds, then free-form parsing that
// also understands relative forms such as "5分钟前" or "昨天 10:00" measured
// from now. Values without a zone are read in loc and relative dates never
// point into the future. ok is false when the value is empty or matches nothing.
func ParseTime(value, layout string, loc *time.Location, now time.Time) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if layout != "" {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}

	if digitsPattern.MatchString(value) {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			if len(value) == 13 {
				return time.UnixMilli(n).In(loc), true
			}
			return time.Unix(n, 0).In(loc), true
		}
	}

	parser := dps.Parser{}
	dt, err := parser.Parse(&dps.Configuration{
		Languages:           dateLanguages,
		CurrentTime:         now.In(loc),
		DefaultTimezone:     loc,
		PreferredDateSource: dps.Past,
	}, value)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return dt.Time, true
}
