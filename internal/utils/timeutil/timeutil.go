package timeutil

import "time"

const jakartaTZ = "Asia/Jakarta"

// JakartaLoc returns the Asia/Jakarta location. Falls back to a fixed +7
// offset when the tzdata is unavailable so weekend math never silently uses
// server-local time.
func JakartaLoc() *time.Location {
	loc, err := time.LoadLocation(jakartaTZ)
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}

// NowJakarta returns the current Jakarta wall time.
func NowJakarta() time.Time {
	return time.Now().In(JakartaLoc())
}

// JakartaDate formats t as YYYY-MM-DD in Jakarta time.
func JakartaDate(t time.Time) string {
	return t.In(JakartaLoc()).Format("2006-01-02")
}

// ParseJakartaDateTime parses the "YYYY-MM-DD HH:mm:ss" strings used by OY
// callbacks, which are Jakarta-local.
func ParseJakartaDateTime(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", s, JakartaLoc())
}

// ParseJakartaDate parses YYYY-MM-DD as midnight Jakarta time.
func ParseJakartaDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, JakartaLoc())
}
