package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

func TestRenderReminder(t *testing.T) {
	now := time.Date(2025, time.May, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		user    domain.User
		preset  domain.Preset
		stock   int
		want    []string
		notWant []string
	}{
		{
			name:    "daily medicine",
			user:    domain.User{FirstName: "Ada", LastName: "Lovelace"},
			preset:  domain.Presets[1],
			stock:   5,
			want:    []string{"Hello Ada Lovelace,", "You have 5 days of Doxycycline left."},
			notWant: []string{"weekly pill"},
		},
		{
			name:   "weekly medicine, single pill",
			user:   domain.User{},
			preset: domain.Presets[2],
			stock:  1,
			want:   []string{"Hello there,", "You have 1 week of Mefloquine left.", "weekly pill"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.NewMedicine(1, tt.preset, tt.stock, now)
			got, err := renderReminder(tt.user, m)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in:\n%s", w, got)
				}
			}
		})
	}
}
