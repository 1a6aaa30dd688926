package domain

import (
	"testing"
	"time"
)

// helper: build a time in given tz and return its UTC
func mustLocalUTC(t *testing.T, tz string, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return time.Date(y, m, d, hh, mm, 0, 0, loc).UTC()
}

func mustWindow(t *testing.T, tz, hours string) Window {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	from, to, err := ParseActiveWindow(hours)
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	return Window{Loc: loc, FromM: from, ToM: to}
}

func TestNextDelivery_InsideWindowIsImmediate(t *testing.T) {
	w := mustWindow(t, "Africa/Nairobi", "09:00-21:00")
	now := mustLocalUTC(t, "Africa/Nairobi", 2025, time.May, 5, 19, 46)
	if got := w.NextDelivery(now); !got.Equal(now) {
		t.Fatalf("want %v, got %v", now, got)
	}
}

func TestNextDelivery_BeforeWindowStartsToday(t *testing.T) {
	w := mustWindow(t, "Africa/Nairobi", "09:00-21:00")
	now := mustLocalUTC(t, "Africa/Nairobi", 2025, time.May, 6, 7, 0)
	want := mustLocalUTC(t, "Africa/Nairobi", 2025, time.May, 6, 9, 0)
	if got := w.NextDelivery(now); !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestNextDelivery_AfterWindowStartsTomorrow(t *testing.T) {
	w := mustWindow(t, "Africa/Nairobi", "09:00-21:00")
	now := mustLocalUTC(t, "Africa/Nairobi", 2025, time.May, 31, 22, 30)
	want := mustLocalUTC(t, "Africa/Nairobi", 2025, time.June, 1, 9, 0)
	if got := w.NextDelivery(now); !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestNextDelivery_WrapWindow(t *testing.T) {
	w := mustWindow(t, "Europe/Moscow", "22:00–02:00")

	inside := mustLocalUTC(t, "Europe/Moscow", 2025, time.May, 8, 1, 30)
	if got := w.NextDelivery(inside); !got.Equal(inside) {
		t.Fatalf("morning segment: want %v, got %v", inside, got)
	}

	midday := mustLocalUTC(t, "Europe/Moscow", 2025, time.May, 8, 12, 0)
	want := mustLocalUTC(t, "Europe/Moscow", 2025, time.May, 8, 22, 0)
	if got := w.NextDelivery(midday); !got.Equal(want) {
		t.Fatalf("midday: want %v, got %v", want, got)
	}
}

func TestNextDelivery_ZeroLengthWindowIsAlwaysOpen(t *testing.T) {
	w := Window{FromM: 0, ToM: 0}
	now := time.Date(2025, time.May, 8, 3, 0, 0, 0, time.UTC)
	if got := w.NextDelivery(now); !got.Equal(now) {
		t.Fatalf("want %v, got %v", now, got)
	}
}

func TestFireAt_RespectsRepeatAfterLastSend(t *testing.T) {
	w := Window{}
	sent := time.Date(2025, time.May, 8, 10, 0, 0, 0, time.UTC)
	anchor := sent.Add(2 * time.Hour)

	got := FireAt(anchor, &sent, 24*time.Hour, w)
	if want := sent.Add(24 * time.Hour); !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	// Without a previous send the anchor wins.
	if got := FireAt(anchor, nil, 24*time.Hour, w); !got.Equal(anchor) {
		t.Fatalf("want %v, got %v", anchor, got)
	}
}

func TestNextRepeat_AlignsToWindow(t *testing.T) {
	w := mustWindow(t, "UTC", "09:00-21:00")
	sent := time.Date(2025, time.May, 8, 20, 30, 0, 0, time.UTC)
	got := NextRepeat(sent, 12*time.Hour, w)
	want := time.Date(2025, time.May, 9, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestWindowString(t *testing.T) {
	if got := (Window{}).String(); got != "always" {
		t.Fatalf("got %q", got)
	}
	w := Window{FromM: 9 * 60, ToM: 21*60 + 30}
	if got := w.String(); got != "09:00-21:30 UTC" {
		t.Fatalf("got %q", got)
	}
	if got := LocalizeTime(time.Date(2025, 1, 1, 23, 15, 0, 0, time.UTC), nil); got != "23:15" {
		t.Fatalf("got %q", got)
	}
}
