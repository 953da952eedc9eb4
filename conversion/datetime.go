package conversion

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// errUnrecognizedDate is returned when no known date layout matches the value
var errUnrecognizedDate = errors.New("unrecognized date/time format")

// datetimePattern pairs a cheap shape check with the layouts to try
type datetimePattern struct {
	pattern *regexp.Regexp
	layouts []string
	// zoned layouts carry their own offset and ignore the converter location
	zoned bool
}

// Cached datetime patterns, ISO forms first since they are the most common.
var cachedDatetimePatterns = []datetimePattern{
	// ISO8601 with timezone
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		layouts: []string{time.RFC3339Nano},
		zoned:   true,
	},
	// ISO8601 with space and numeric zone, as printed by Arrow timestamps
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{4})$`),
		layouts: []string{"2006-01-02 15:04:05.999999999Z0700"},
		zoned:   true,
	},
	// ISO8601 without timezone
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		layouts: []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"},
	},
	// ISO8601 date and time with space
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		layouts: []string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04"},
	},
	// ISO8601 date only
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		layouts: []string{time.DateOnly},
	},
	// European day-first formats
	{
		pattern: regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}(:\d{2})?$`),
		layouts: []string{"2.1.2006 15:04:05", "2.1.2006 15:04"},
	},
	{
		pattern: regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		layouts: []string{"2.1.2006"},
	},
	// US month-first formats
	{
		pattern: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}$`),
		layouts: []string{"1/2/2006 15:04:05"},
	},
	{
		pattern: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		layouts: []string{"1/2/2006"},
	},
}

// parseDateTime parses value with the built-in layouts, then with extra.
// Values without an offset are interpreted in loc.
func parseDateTime(value string, loc *time.Location, extra []string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var lastErr error
	for _, dp := range cachedDatetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, layout := range dp.layouts {
			var (
				t   time.Time
				err error
			)
			if dp.zoned {
				t, err = time.Parse(layout, value)
			} else {
				t, err = time.ParseInLocation(layout, value, loc)
			}
			if err == nil {
				return t, nil
			}
			lastErr = err
		}
	}

	for _, layout := range extra {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return time.Time{}, lastErr
	}
	return time.Time{}, errUnrecognizedDate
}
