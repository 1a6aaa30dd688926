package profile

import (
	"testing"
	"time"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

func TestRender_ReadOnlyDimsControls(t *testing.T) {
	st := newState(5)
	v := Render(st)

	if v.Mode != domain.ReadOnly || v.HasProfile {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.ReminderEnabled || v.ReminderAlpha != domain.DisabledAlpha {
		t.Fatalf("reminder picker should be dimmed: %+v", v)
	}
	if len(v.Fields) != len(Fields) {
		t.Fatalf("want %d fields, got %d", len(Fields), len(v.Fields))
	}
	for _, f := range v.Fields {
		if f.Enabled || f.Alpha != domain.DisabledAlpha {
			t.Fatalf("field %s should be disabled: %+v", f.Field, f)
		}
	}
	if v.Remaining.Present {
		t.Fatal("no medicine means no remaining line")
	}
}

func TestRender_PendingStockAndAlert(t *testing.T) {
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	m := domain.NewMedicine(5, domain.Presets[0], 20, now)

	st := newState(5)
	st.Medicines = []domain.Medicine{m}
	st = st.PressEdit()
	st, err := st.StageStock(m.ID, 3)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	st = st.derive()

	v := Render(st)
	if len(v.Rows) != 1 {
		t.Fatalf("want one row, got %d", len(v.Rows))
	}
	row := v.Rows[0]
	if !row.Pending || row.Stock != 3 || !row.Enabled || row.Alpha != domain.EnabledAlpha {
		t.Fatalf("unexpected row %+v", row)
	}
	// The remaining line reflects saved stock, not the staged edit.
	if v.Remaining.Stock != 20 || v.Remaining.Unit != domain.UnitDays || v.Remaining.Alert {
		t.Fatalf("unexpected remaining %+v", v.Remaining)
	}

	st.Medicines[0].CurrentStock = 6.9
	v = Render(st.derive())
	if v.Remaining.Stock != 6 || !v.Remaining.Alert {
		t.Fatalf("6 daily pills with a one week lead should alert: %+v", v.Remaining)
	}
}
