package domain

import (
	"strings"
	"time"
)

const (
	// FreeDailyLimit is the number of saves a free workspace gets per day.
	FreeDailyLimit = 10

	// DailyLimitMessage is matched by the widget to show the upgrade prompt.
	// Keep the wording stable.
	DailyLimitMessage = "Daily limit reached. Upgrade to Pro for unlimited saves."
)

// DailyQuota counts saves for one calendar day.
type DailyQuota struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Today returns the calendar date used as the quota key.
func Today(now time.Time) string {
	return now.UTC().Format(time.DateOnly)
}

// CountFor returns the saves recorded for today. A quota stored under a
// different date counts as zero; it is never deleted explicitly.
func (q DailyQuota) CountFor(today string) int {
	if q.Date != today {
		return 0
	}
	return q.Count
}

// Increment returns the quota after one more save on today.
func (q DailyQuota) Increment(today string) DailyQuota {
	return DailyQuota{Date: today, Count: q.CountFor(today) + 1}
}

// LimitReached reports whether another save is refused.
func LimitReached(sub *Subscription, quota DailyQuota, today string, limit int) bool {
	if sub.Paid() {
		return false
	}
	return quota.CountFor(today) >= limit
}

// IsDailyLimitError reports whether a save failure message is the quota
// refusal rather than a generic fault.
func IsDailyLimitError(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "limit")
}
