package query

import (
	"time"

	"opecbrain/entity"
)

// FilterByDateRange keeps the records having at least one timestamp whose
// date lies in [start, end]. Only the YYYY-MM-DD part is compared, so the
// time of day of start and end is irrelevant.
func FilterByDateRange(records []entity.Record, start, end time.Time) []entity.Record {
	startDate := start.Format(entity.DateLayout)
	endDate := end.Format(entity.DateLayout)
	out := []entity.Record{}
	for _, rec := range records {
		for _, d := range rec.Dates() {
			if d >= startDate && d <= endDate {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// ParseDate reads a YYYY-MM-DD date in the local zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(entity.DateLayout, s, time.Local)
}
