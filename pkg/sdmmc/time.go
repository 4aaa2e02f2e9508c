package sdmmc

import "time"

// Timestamp is the time format used to stamp file metadata.
type Timestamp struct {
	YearSince1970    uint8
	ZeroIndexedMonth uint8
	ZeroIndexedDay   uint8
	Hours            uint8
	Minutes          uint8
	Seconds          uint8
}

// TimeSource supplies timestamps to the filesystem driver.
type TimeSource interface {
	Timestamp() Timestamp
}

// TimestampFromTime converts t to a Timestamp in t's location.
// Years before 1970 clamp to 1970 and years after 2225 clamp to 2225.
func TimestampFromTime(t time.Time) Timestamp {
	year := t.Year() - 1970
	if year < 0 {
		year = 0
	} else if year > 255 {
		year = 255
	}
	return Timestamp{
		YearSince1970:    uint8(year),
		ZeroIndexedMonth: uint8(t.Month() - 1),
		ZeroIndexedDay:   uint8(t.Day() - 1),
		Hours:            uint8(t.Hour()),
		Minutes:          uint8(t.Minute()),
		Seconds:          uint8(t.Second()),
	}
}

// Time converts the timestamp to time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Date(
		int(t.YearSince1970)+1970,
		time.Month(t.ZeroIndexedMonth)+1,
		int(t.ZeroIndexedDay)+1,
		int(t.Hours), int(t.Minutes), int(t.Seconds),
		0, time.UTC)
}

// TimeSourceFunc is the func form of TimeSource.
type TimeSourceFunc func() Timestamp

// Timestamp implements TimeSource.
func (f TimeSourceFunc) Timestamp() Timestamp {
	return f()
}
