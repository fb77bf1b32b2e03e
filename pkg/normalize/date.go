package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// Serial 25569 is 1970-01-01 in the 1900 date system (serial 0 = 1899-12-30).
	excelEpochOffset = 25569
	secondsPerDay    = 86400
)

var ddmmyyyy = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate converts a period cell into a UTC midnight time. Text in
// DD/MM/YYYY form is read first, then a list of common layouts; numbers are
// spreadsheet date serials.
func ParseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case string:
		return parseDateText(v)
	case float64:
		return parseSerial(v)
	case int:
		return parseSerial(float64(v))
	case int64:
		return parseSerial(float64(v))
	case time.Time:
		return utcMidnight(v), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported value %v", ErrInvalidDate, value)
	}
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if m := ddmmyyyy.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes 31/02 into March; reject instead.
		if t.Day() != day || int(t.Month()) != month || t.Year() != year {
			return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, s)
		}
		return t, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utcMidnight(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func parseSerial(serial float64) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("%w: serial %v", ErrInvalidDate, serial)
	}
	ms := math.Round((serial - excelEpochOffset) * secondsPerDay * 1000)
	return utcMidnight(time.UnixMilli(int64(ms))), nil
}

func utcMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
