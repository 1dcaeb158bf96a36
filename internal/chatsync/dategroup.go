package chatsync

import (
	"time"

	"github.com/samandareo/quick-brand-admin/internal/models"
)

// DayGroup is one calendar day's worth of messages with its display label.
type DayGroup struct {
	Label    string           `json:"label"`
	Date     time.Time        `json:"date"`
	Messages []models.Message `json:"messages"`
}

// GroupByDay splits a timestamp-ordered timeline into calendar-day groups in
// the viewer's local time zone. Labels follow the admin panel convention:
// "Today", "Yesterday", otherwise weekday plus date. Group boundaries are
// recomputed from the current timeline on every call, never cached.
func GroupByDay(msgs []models.Message, now time.Time) []DayGroup {
	var groups []DayGroup
	for _, msg := range msgs {
		day := truncateToDay(msg.Timestamp.In(now.Location()))
		if len(groups) == 0 || !groups[len(groups)-1].Date.Equal(day) {
			groups = append(groups, DayGroup{
				Label: dayLabel(day, now),
				Date:  day,
			})
		}
		groups[len(groups)-1].Messages = append(groups[len(groups)-1].Messages, msg)
	}
	return groups
}

func dayLabel(day, now time.Time) string {
	today := truncateToDay(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return day.Format("Monday, 02 Jan 2006")
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
