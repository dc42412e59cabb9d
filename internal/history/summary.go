package history

import (
	"sort"
	"time"
)

// DayCutoff returns midnight of the day (days-1) days ago, so days=1
// means "today".
func DayCutoff(days int) time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}

// DayGroup holds the records of one calendar day.
type DayGroup struct {
	Date    time.Time
	Records []Record
	Counts  map[string]int // per kind
	Bytes   int64
}

// GroupByDay buckets records by local calendar day, newest day first.
// Records keep their order within a day.
func GroupByDay(records []Record, loc *time.Location) []DayGroup {
	byDay := map[time.Time]*DayGroup{}
	for _, r := range records {
		t := r.Time.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		g, ok := byDay[day]
		if !ok {
			g = &DayGroup{Date: day, Counts: map[string]int{}}
			byDay[day] = g
		}
		g.Records = append(g.Records, r)
		g.Counts[r.Kind]++
		g.Bytes += r.Bytes
	}

	groups := make([]DayGroup, 0, len(byDay))
	for _, g := range byDay {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}
