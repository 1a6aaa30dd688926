package domain

import "testing"

func TestModeTransitions(t *testing.T) {
	cases := []struct {
		from Mode
		ev   ModeEvent
		want Mode
	}{
		{ReadOnly, EditPressed, Editing},
		{ReadOnly, SaveAccepted, ReadOnly},
		{ReadOnly, SaveRejected, ReadOnly},
		{Editing, SaveAccepted, ReadOnly},
		{Editing, SaveRejected, Editing},
		{Editing, EditPressed, Editing},
	}
	for _, tc := range cases {
		if got := tc.from.Next(tc.ev); got != tc.want {
			t.Errorf("%v + %d: want %v, got %v", tc.from, tc.ev, tc.want, got)
		}
	}
}

func TestModeAlpha(t *testing.T) {
	if ReadOnly.Interactive() || ReadOnly.Alpha() != DisabledAlpha {
		t.Fatal("read-only controls must be disabled and dimmed")
	}
	if !Editing.Interactive() || Editing.Alpha() != EnabledAlpha {
		t.Fatal("editing controls must be enabled")
	}
}
