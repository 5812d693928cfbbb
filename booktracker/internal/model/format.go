package model

import "time"

const (
	listDateLayout   = "Jan 2, 2006"
	detailDateLayout = "January 2, 2006 at 03:04 PM"
)

// FormatListDate renders a timestamp the way the list shows it.
func FormatListDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(listDateLayout)
}

func FormatDetailDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(detailDateLayout)
}
