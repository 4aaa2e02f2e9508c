package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sdlog/pkg/sdmmc"
)

func TestClockData(t *testing.T) {
	var c ClockData
	require.Equal(t, 1970, c.Year())
	require.Equal(t, 1, c.Month())
	require.Equal(t, 1, c.Day())

	c.SetFromDateTime(DateTime{Year: 24, Month: 3, Day: 9, Weekday: 6, Hours: 7, Minutes: 5, Seconds: 3})
	require.Equal(t, sdmmc.Timestamp{
		YearSince1970: 54, ZeroIndexedMonth: 2, ZeroIndexedDay: 8,
		Hours: 7, Minutes: 5, Seconds: 3,
	}, c.Timestamp())
	require.Equal(t, 2024, c.Year())
	require.Equal(t, 3, c.Month())
	require.Equal(t, 9, c.Day())
	require.Equal(t, 6, c.Weekday())

	c.Reset()
	require.Equal(t, sdmmc.Timestamp{}, c.Timestamp())
	require.Equal(t, 0, c.Weekday())
}

func TestClockDataUpdate(t *testing.T) {
	var c ClockData
	dt := DateTime{Year: 24, Month: 1, Day: 1, Hours: 12}
	require.NoError(t, c.Update(RTCFunc(func() (DateTime, error) { return dt, nil })))
	require.Equal(t, 12, c.Hours())

	failure := errors.New("i2c nack")
	err := c.Update(RTCFunc(func() (DateTime, error) { return DateTime{}, failure }))
	require.Equal(t, failure, err)
	require.Equal(t, sdmmc.Timestamp{}, c.Timestamp())
}

func TestDateTimeFromTime(t *testing.T) {
	dt := DateTimeFromTime(time.Date(2024, 1, 1, 12, 30, 15, 0, time.UTC))
	require.Equal(t, DateTime{Year: 24, Month: 1, Day: 1, Weekday: 1, Hours: 12, Minutes: 30, Seconds: 15}, dt)
	require.Equal(t, uint8(0), DateTimeFromTime(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)).Year)
	require.Equal(t, uint8(99), DateTimeFromTime(time.Date(2150, 1, 1, 0, 0, 0, 0, time.UTC)).Year)

	var rtc SystemRTC
	now, err := rtc.DateTime()
	require.NoError(t, err)
	require.True(t, now.Month >= 1 && now.Month <= 12)
}

func TestFormat(t *testing.T) {
	var c ClockData
	c.SetFromDateTime(DateTime{Year: 24, Month: 1, Day: 2, Hours: 9, Minutes: 5, Seconds: 7})

	require.Equal(t, "20240102.log", FileName(&c))
	require.Equal(t, "2024-1-2 9:05:07 42\n", FileLine(&c, 42))
	require.Equal(t, "2.1.2024 9:05:07", DateTimeText(&c))
	require.Equal(t, "24/01/02\n09:05:07\nday 2",
		RenderDate(DateTime{Year: 24, Month: 1, Day: 2, Weekday: 2, Hours: 9, Minutes: 5, Seconds: 7}))

	c.Reset()
	require.Equal(t, "19700101.log", FileName(&c))
	require.True(t, sdmmc.IsShortName(FileName(&c)))
}
