package season

import (
	"fmt"
	"strconv"
	"time"
)

type Season struct {
	// understat identifies a season by the calendar year it starts in
	StartYear int
	EndYear   int
	StartTime time.Time
}

// Label renders the season the way it is displayed, ex. 2025 -> "2025/26".
func (s Season) Label() string {
	return Label(s.StartYear)
}

// Code is the value understat expects in the `season` form field.
func (s Season) Code() string {
	return strconv.Itoa(s.StartYear)
}

// gets the football season that `now` falls in, seasons run from
// August through July so anything before August belongs to the
// season that started the previous year
func Current(now time.Time) Season {
	year := now.Year()
	month := now.Month()

	if month >= time.August {
		return Season{
			StartYear: year,
			EndYear:   year + 1,
			StartTime: time.Date(year, time.August, 1, 0, 0, 0, 0, now.Location()),
		}
	}

	return Season{
		StartYear: year - 1,
		EndYear:   year,
		StartTime: time.Date(year-1, time.August, 1, 0, 0, 0, 0, now.Location()),
	}
}

// CurrentCode is shorthand for Current(now).Code().
func CurrentCode(now time.Time) string {
	return Current(now).Code()
}

func Label(startYear int) string {
	end := strconv.Itoa(startYear + 1)
	if len(end) > 2 {
		end = end[len(end)-2:]
	}
	return fmt.Sprintf("%d/%s", startYear, end)
}
