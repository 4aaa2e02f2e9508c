package clock

import "fmt"

// FileName returns the name of the daily log file, e.g. 20240101.log.
func FileName(c *ClockData) string {
	return fmt.Sprintf("%d%02d%02d.log", c.Year(), c.Month(), c.Day())
}

// FileLine returns one log line with the sample counter.
func FileLine(c *ClockData, counter int) string {
	return fmt.Sprintf("%d-%d-%d %d:%02d:%02d %d\n",
		c.Year(), c.Month(), c.Day(),
		c.Hours(), c.Minutes(), c.Seconds(),
		counter)
}

// DateTimeText formats the clock for display.
func DateTimeText(c *ClockData) string {
	return fmt.Sprintf("%d.%d.%d %d:%02d:%02d",
		c.Day(), c.Month(), c.Year(),
		c.Hours(), c.Minutes(), c.Seconds())
}

// RenderDate formats a raw RTC reading over three lines.
func RenderDate(dt DateTime) string {
	return fmt.Sprintf("%02d/%02d/%02d\n%02d:%02d:%02d\nday %d",
		dt.Year, dt.Month, dt.Day,
		dt.Hours, dt.Minutes, dt.Seconds,
		dt.Weekday)
}
