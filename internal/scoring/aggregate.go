package scoring

// DailyLog is one stored day, keyed by its calendar date string.
type DailyLog struct {
	Date string
	Data DayData
}

type WeeklyTotals struct {
	Workouts     float64 `json:"workouts"`
	FriendCalls  float64 `json:"friendCalls"`
	FamilyCalls  float64 `json:"familyCalls"`
	SocialEvents float64 `json:"socialEvents"`
	Pages        float64 `json:"pages"`
}

func (w WeeklyTotals) add(day DayData) WeeklyTotals {
	w.Workouts += float64(day.Exercise.WorkoutsLogged())
	w.FriendCalls += day.Community.FriendCalls.Or(0)
	w.FamilyCalls += day.Community.FamilyCalls.Or(0)
	w.SocialEvents += day.Community.SocialEvents.Or(0)
	w.Pages += day.Reading.TotalPages()
	return w
}

// AggregateWeek sums the other days of date's Monday-Sunday week. Rows
// outside the window, rows with unreadable dates and the row for date
// itself are ignored, so the caller may pass a loosely filtered history.
func AggregateWeek(date string, logs []DailyLog) (WeeklyTotals, error) {
	start, end, err := WeekWindow(date)
	if err != nil {
		return WeeklyTotals{}, err
	}
	var totals WeeklyTotals
	for _, entry := range logs {
		day, err := ParseDate(entry.Date)
		if err != nil {
			continue
		}
		d := day.Format(DateLayout)
		if d == date || d < start || d > end {
			continue
		}
		totals = totals.add(entry.Data)
	}
	return totals, nil
}

// WeeklyActuals adds today's own values to the rest of the week.
func WeeklyActuals(rest WeeklyTotals, today DayData) WeeklyTotals {
	return rest.add(today)
}
