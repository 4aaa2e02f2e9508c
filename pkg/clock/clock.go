// Package clock keeps the wall time read from a real-time clock chip.
package clock

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

// DateTime is the time as reported by a PCF8563-style RTC.
// Year counts from 2000, Month and Day are 1-based.
type DateTime struct {
	Year    uint8
	Month   uint8
	Day     uint8
	Weekday uint8
	Hours   uint8
	Minutes uint8
	Seconds uint8
}

// DateTimeFromTime converts t into a DateTime. Years outside
// 2000..2099 can't be represented and are clamped.
func DateTimeFromTime(t time.Time) DateTime {
	year := t.Year() - 2000
	if year < 0 {
		year = 0
	} else if year > 99 {
		year = 99
	}
	return DateTime{
		Year:    uint8(year),
		Month:   uint8(t.Month()),
		Day:     uint8(t.Day()),
		Weekday: uint8(t.Weekday()),
		Hours:   uint8(t.Hour()),
		Minutes: uint8(t.Minute()),
		Seconds: uint8(t.Second()),
	}
}

// RTC reads the current date and time from a clock chip.
type RTC interface {
	DateTime() (DateTime, error)
}

// RTCFunc is the func form of RTC.
type RTCFunc func() (DateTime, error)

// DateTime implements RTC.
func (f RTCFunc) DateTime() (DateTime, error) {
	return f()
}

// SystemRTC reads the host clock in its local time zone.
type SystemRTC struct {
	Location *time.Location
}

// DateTime implements RTC.
func (r *SystemRTC) DateTime() (DateTime, error) {
	now := time.Now()
	if r.Location != nil {
		now = now.In(r.Location)
	}
	return DateTimeFromTime(now), nil
}

// ClockData is the last time read from an RTC, usable as the
// sdmmc.TimeSource of a card controller.
type ClockData struct {
	timestamp sdmmc.Timestamp
	weekday   uint8
}

var _ sdmmc.TimeSource = (*ClockData)(nil)

// Timestamp implements sdmmc.TimeSource.
func (c *ClockData) Timestamp() sdmmc.Timestamp {
	return c.timestamp
}

// SetFromDateTime sets the clock from an RTC reading.
func (c *ClockData) SetFromDateTime(dt DateTime) {
	c.timestamp = sdmmc.Timestamp{
		YearSince1970:    dt.Year + 30,
		ZeroIndexedMonth: dt.Month - 1,
		ZeroIndexedDay:   dt.Day - 1,
		Hours:            dt.Hours,
		Minutes:          dt.Minutes,
		Seconds:          dt.Seconds,
	}
	c.weekday = dt.Weekday
}

// Reset sets the clock back to 1970-01-01 00:00:00.
func (c *ClockData) Reset() {
	c.timestamp = sdmmc.Timestamp{}
	c.weekday = 0
}

// Update reads rtc and resets the clock if the read fails.
func (c *ClockData) Update(rtc RTC) error {
	dt, err := rtc.DateTime()
	if err != nil {
		glog.Warningf("RTC read error: %v", err)
		c.Reset()
		return err
	}
	c.SetFromDateTime(dt)
	return nil
}

// Year returns the full year.
func (c *ClockData) Year() int { return int(c.timestamp.YearSince1970) + 1970 }

// Month returns the 1-based month.
func (c *ClockData) Month() int { return int(c.timestamp.ZeroIndexedMonth) + 1 }

// Day returns the 1-based day of month.
func (c *ClockData) Day() int { return int(c.timestamp.ZeroIndexedDay) + 1 }

// Weekday returns the day of week as reported by the RTC.
func (c *ClockData) Weekday() int { return int(c.weekday) }

// Hours returns the hours.
func (c *ClockData) Hours() int { return int(c.timestamp.Hours) }

// Minutes returns the minutes.
func (c *ClockData) Minutes() int { return int(c.timestamp.Minutes) }

// Seconds returns the seconds.
func (c *ClockData) Seconds() int { return int(c.timestamp.Seconds) }
