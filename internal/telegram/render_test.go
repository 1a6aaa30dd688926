package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
	"github.com/ykvlv/pill-profile-bot/internal/profile"
)

func sampleView(mode domain.Mode) profile.View {
	alpha := mode.Alpha()
	enabled := mode.Interactive()
	v := profile.View{
		ChatID:          1,
		Mode:            mode,
		HasProfile:      true,
		Reminder:        domain.TwoWeeks,
		ReminderEnabled: enabled,
		ReminderAlpha:   alpha,
		Rows: []profile.RowView{{
			MedicineID: uuid.MustParse("6f1c1a8e-1f0e-4b77-9a57-0b7a3d3c2f10"),
			Name:       "Mefloquine",
			Stock:      1,
			Pending:    true,
			Enabled:    enabled,
			Alpha:      alpha,
		}},
		Remaining: profile.RemainingView{
			Present:  true,
			Stock:    1,
			Unit:     domain.UnitWeek,
			Medicine: "Mefloquine",
			Alert:    true,
		},
	}
	for _, f := range profile.Fields {
		value := ""
		if f == profile.FieldFirstName {
			value = "Ada"
		}
		v.Fields = append(v.Fields, profile.FieldView{Field: f, Value: value, Enabled: enabled, Alpha: alpha})
	}
	return v
}

func TestScreenText_English(t *testing.T) {
	got := screenText(NewPrinter("en"), sampleView(domain.ReadOnly))

	for _, want := range []string{
		"👤 Your profile",
		"• First name: Ada",
		"• Last name: —",
		"• Mefloquine: 1 (unsaved)",
		"⏰ Remind me 2 weeks before I run out",
		"❗ You have 1 week of Mefloquine left.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("screen text missing %q:\n%s", want, got)
		}
	}
}

func TestScreenText_French(t *testing.T) {
	v := sampleView(domain.Editing)
	v.Reminder = domain.OneWeek
	got := screenText(NewPrinter("fr-CA"), v)

	for _, want := range []string{
		"✏️ Modification du profil",
		"• Prénom: Ada",
		"(non enregistré)",
		"⏰ Me prévenir 1 semaine avant la fin",
		"Il vous reste 1 semaine de Mefloquine.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("screen text missing %q:\n%s", want, got)
		}
	}
}

func TestNewPrinter_FallsBackToEnglish(t *testing.T) {
	p := NewPrinter("xx")
	if got := p.Sprintf(domain.InvalidEmail.Key()); got != "E-mail address is not valid." {
		t.Fatalf("unexpected text %q", got)
	}
	if got := NewPrinter("fr").Sprintf(domain.InvalidEmail.Key()); got != "L'adresse e-mail n'est pas valide." {
		t.Fatalf("unexpected french text %q", got)
	}
}

func TestScreenKeyboard_ReadOnly(t *testing.T) {
	kb := screenKeyboard(NewPrinter("en"), sampleView(domain.ReadOnly))

	var got []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			got = append(got, *b.CallbackData)
		}
	}
	want := []string{cbEdit, cbSetup, cbRefresh}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("buttons = %v, want %v", got, want)
	}
}

func TestEditToast(t *testing.T) {
	p := NewPrinter("en")
	if got := editToast(p, domain.Editing); got != "" {
		t.Fatalf("entering edit mode should not toast, got %q", got)
	}
	if got := editToast(p, domain.ReadOnly); got != "Profile saved ✅" {
		t.Fatalf("got %q", got)
	}
	if got := editToast(NewPrinter("fr"), domain.ReadOnly); got != "Profil enregistré ✅" {
		t.Fatalf("got %q", got)
	}
}

func TestScreenKeyboard_EditingExposesControls(t *testing.T) {
	v := sampleView(domain.Editing)
	kb := screenKeyboard(NewPrinter("en"), v)

	seen := map[string]bool{}
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			seen[*b.CallbackData] = true
		}
	}
	for _, want := range []string{
		cbFieldPrefix + string(profile.FieldFirstName),
		cbFieldPrefix + string(profile.FieldPhone),
		cbLocation,
		cbStockPrefix + v.Rows[0].MedicineID.String(),
		cbRemindPrefix + "7",
		cbRemindPrefix + "28",
		cbSave,
	} {
		if !seen[want] {
			t.Errorf("missing button %q", want)
		}
	}
	if seen[cbFieldPrefix+string(profile.FieldLocation)] {
		t.Error("location must use the lookup button")
	}
}

func TestReminderText(t *testing.T) {
	m := domain.NewMedicine(1, domain.Presets[0], 3, time.Now())
	got := reminderText(NewPrinter("en"), m)
	want := "⚠️ You have 3 days of Malarone left. Time to refill your prophylaxis."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
