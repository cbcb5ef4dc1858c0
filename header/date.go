package header

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned (wrapped) by ParseHTTPDate for values it cannot understand.
var ErrInvalidDate = errors.New("invalid HTTP date")

// HTTP-date = IMF-fixdate / obs-date, plus the RFC 2822 variants
// (numeric zones, single digit days) older origins still send.
var dateLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 GMT", // IMF-fixdate
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC850,
	time.ANSIC,
}

// ParseHTTPDate parses an HTTP-date into an instant in UTC.
// Values that match none of the accepted formats result in an error wrapping ErrInvalidDate.
func ParseHTTPDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// FormatHTTPDate formats t as an IMF-fixdate.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
}
