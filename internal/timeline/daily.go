package timeline

import (
	"time"

	"gorate/domain/rate"
)

// DefaultWindowDays is the trailing window shown in a daily activity chart.
const DefaultWindowDays = 30

const dateLayout = "2006-01-02"

// DailyCounts buckets timestamps into UTC calendar days over the window of
// `days` days ending on now's date, oldest first. Every day in the window is
// present, zero-filled, and events outside it are ignored.
func DailyCounts(timestamps []time.Time, now time.Time, days int) []rate.DailyCount {
	if days <= 0 {
		return nil
	}

	end := truncateDay(now.UTC())
	start := end.AddDate(0, 0, -(days - 1))

	counts := make([]rate.DailyCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(dateLayout)
		counts[i] = rate.DailyCount{Date: key}
		index[key] = i
	}

	for _, ts := range timestamps {
		if i, ok := index[ts.UTC().Format(dateLayout)]; ok {
			counts[i].Count++
		}
	}
	return counts
}

// ActiveDays is the number of distinct UTC days with at least one event.
func ActiveDays(timestamps []time.Time) int {
	seen := make(map[string]struct{})
	for _, ts := range timestamps {
		seen[ts.UTC().Format(dateLayout)] = struct{}{}
	}
	return len(seen)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
