// Package premium holds the rule that derives a user's premium flag from the
// expiration date. Every write of the flag goes through Apply.
package premium

import "time"

// DefaultPlanDays is the extension used when a confirmation carries no plan.
const DefaultPlanDays = 30

// Today returns the calendar date of now in loc, as midnight UTC.
// Dates are compared without a time component everywhere in the package.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date drops the time component of t, keeping its calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Active reports whether a user whose premium ends on exp has access on today.
// The expiration day itself is still covered.
func Active(exp *time.Time, today time.Time) bool {
	if exp == nil {
		return false
	}
	return !Date(*exp).Before(Date(today))
}

// Apply returns the flag and date to persist for a user.
// An inactive subscription clears the date.
func Apply(exp *time.Time, subscriptionActive bool, today time.Time) (bool, *time.Time) {
	if !subscriptionActive {
		return false, nil
	}
	if exp != nil {
		d := Date(*exp)
		exp = &d
	}
	return Active(exp, today), exp
}

// Extend pushes the expiration days forward from the later of today and current.
func Extend(current *time.Time, today time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultPlanDays
	}
	base := Date(today)
	if current != nil && Date(*current).After(base) {
		base = Date(*current)
	}
	return base.AddDate(0, 0, days)
}
