package domain

import "time"

// UsageEvent is one metered unit reported by the workflow-automation platform.
type UsageEvent struct {
	EventID   string
	TenantID  string
	Metric    string
	Quantity  int64
	Timestamp time.Time
	Source    string
}

// UsageTotal is the aggregated quantity of one metric over a window.
type UsageTotal struct {
	Metric   string
	Quantity int64
	Events   int64
}

// BillingWindow returns the calendar month containing t, in UTC.
func BillingWindow(t time.Time) (from, to time.Time) {
	t = t.UTC()
	from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
