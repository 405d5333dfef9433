package entity

import "time"

// DateRange is an inclusive range of trade dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether there is nothing to fetch.
func (r DateRange) Empty() bool {
	return r.Start.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// IncrementalRange starts the day after the latest production date (or fallbackDays before
// today when production is empty) and ends yesterday.
func IncrementalRange(maxDate time.Time, hasData bool, today time.Time, fallbackDays int) DateRange {
	today = Day(today)
	start := today.AddDate(0, 0, -fallbackDays)
	if hasData {
		start = Day(maxDate).AddDate(0, 0, 1)
	}
	return DateRange{Start: start, End: today.AddDate(0, 0, -1)}
}

// BackfillRange covers the last days calendar days, ending yesterday.
func BackfillRange(today time.Time, days int) DateRange {
	today = Day(today)
	return DateRange{Start: today.AddDate(0, 0, -days), End: today.AddDate(0, 0, -1)}
}
