package utils

import (
	"strings"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Headlines from the
// default feeds are dated in this zone.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// LoadLocation resolves a zone name. "" means the process zone and "IST"
// is an alias for Asia/Kolkata; anything else must be an IANA name.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "":
		return time.Local, nil
	case "IST":
		return IST, nil
	}
	return time.LoadLocation(name)
}

// FormatDateIn formats t as a calendar date as seen in loc. A nil loc
// keeps t's own zone; the zero time gives "".
func FormatDateIn(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return FormatDate(t)
}
