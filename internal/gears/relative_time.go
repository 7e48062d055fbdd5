package gears

import (
	"fmt"
	"time"
)

// RelativeTime describes how long ago t was, relative to now. Times older than a
// year fall back to the calendar date in t's location. Future times read as "방금 전".
func RelativeTime(now, t time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	if seconds < 60 {
		return "방금 전"
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d분 전", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d시간 전", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d일 전", days)
	}
	if months := days / 30; months < 12 {
		return fmt.Sprintf("%d개월 전", months)
	}
	return t.Format("2006.01.02")
}
