package domain

import "time"

// InWindow returns true if local time (minutes since midnight) is inside active window.
// Supports wrap-around windows like 22:00–02:00 (fromM > toM).
func InWindow(localM, fromM, toM int) bool {
	if fromM == toM {
		return false // zero-length window
	}
	if fromM < toM {
		return localM >= fromM && localM < toM
	}
	// wrap: [from..1440) U [0..to)
	return localM >= fromM || localM < toM
}

// Window is the part of the day in which reminders may be delivered.
// A window with FromM == ToM is treated as always open.
type Window struct {
	Loc   *time.Location
	FromM int
	ToM   int
}

func (w Window) location() *time.Location {
	if w.Loc == nil {
		return time.UTC
	}
	return w.Loc
}

// Open reports whether the window has no restriction.
func (w Window) Open() bool { return w.FromM == w.ToM }

func (w Window) String() string {
	if w.Open() {
		return "always"
	}
	return FormatMinutes(w.FromM) + "-" + FormatMinutes(w.ToM) + " " + w.location().String()
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Open() {
		return true
	}
	lt := t.In(w.location())
	return InWindow(lt.Hour()*60+lt.Minute(), w.FromM, w.ToM)
}

// NextDelivery returns t itself when it is inside the window, otherwise
// the next window start after t. The result is in UTC.
func (w Window) NextDelivery(t time.Time) time.Time {
	if w.Contains(t) {
		return t.UTC()
	}
	lt := t.In(w.location())
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), w.FromM/60, w.FromM%60, 0, 0, lt.Location())
	if !start.After(lt) {
		start = time.Date(lt.Year(), lt.Month(), lt.Day()+1, w.FromM/60, w.FromM%60, 0, 0, lt.Location())
	}
	return start.UTC()
}

// FireAt computes when a reminder anchored at anchor should go out. A
// reminder already delivered at lastSent is not repeated before
// lastSent+repeat.
func FireAt(anchor time.Time, lastSent *time.Time, repeat time.Duration, w Window) time.Time {
	t := anchor
	if lastSent != nil {
		if earliest := lastSent.Add(repeat); earliest.After(t) {
			t = earliest
		}
	}
	return w.NextDelivery(t)
}

// NextRepeat returns the delivery time following a send at sentAt.
func NextRepeat(sentAt time.Time, repeat time.Duration, w Window) time.Time {
	if repeat <= 0 {
		repeat = 24 * time.Hour
	}
	return w.NextDelivery(sentAt.Add(repeat))
}
