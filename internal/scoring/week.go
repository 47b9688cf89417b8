package scoring

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// ParseDate reads a strict YYYY-MM-DD string as a civil date anchored at
// UTC noon, so that no time zone can shift it across a day boundary.
// Padding, signs and non-zero-padded fields are rejected.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil || t.Format(DateLayout) != date {
		return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD)", ErrInvalidDate, date)
	}
	return t.Add(12 * time.Hour), nil
}

// WeekWindow returns the Monday and Sunday of the week containing date.
func WeekWindow(date string) (start, end string, err error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", "", err
	}
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return monday.Format(DateLayout), monday.AddDate(0, 0, 6).Format(DateLayout), nil
}
