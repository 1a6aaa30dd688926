package profile

import (
	"github.com/google/uuid"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

// FieldView is one rendered form field.
type FieldView struct {
	Field   Field
	Value   string
	Enabled bool
	Alpha   float64
}

// RowView is one rendered medicine row.
type RowView struct {
	MedicineID uuid.UUID
	Name       string
	Stock      int
	Pending    bool // Stock is an unsaved edit
	Enabled    bool
	Alpha      float64
}

// RemainingView backs the "You have N units of X left." line.
type RemainingView struct {
	Present  bool
	Stock    int
	Unit     string
	Medicine string
	Alert    bool
}

// View is everything a front end needs to draw the profile screen.
type View struct {
	ChatID          int64
	Mode            domain.Mode
	HasProfile      bool
	Fields          []FieldView
	Rows            []RowView
	Reminder        domain.ReminderInterval
	ReminderEnabled bool
	ReminderAlpha   float64
	Remaining       RemainingView
}

// Render maps a State to a View. It has no side effects.
func Render(st State) View {
	enabled := st.Mode.Interactive()
	alpha := st.Mode.Alpha()

	v := View{
		ChatID:          st.ChatID,
		Mode:            st.Mode,
		HasProfile:      st.User != nil,
		Reminder:        st.Reminder,
		ReminderEnabled: enabled,
		ReminderAlpha:   alpha,
		Remaining: RemainingView{
			Present:  st.Derived.HasMedicine,
			Stock:    st.Derived.Stock,
			Unit:     st.Derived.Unit,
			Medicine: st.Derived.MedicineName,
			Alert:    st.Derived.ShouldNotify,
		},
	}

	v.Fields = make([]FieldView, 0, len(Fields))
	for _, f := range Fields {
		v.Fields = append(v.Fields, FieldView{
			Field:   f,
			Value:   st.Field(f),
			Enabled: enabled,
			Alpha:   alpha,
		})
	}

	for _, m := range st.Medicines {
		row := RowView{
			MedicineID: m.ID,
			Name:       m.Name,
			Stock:      m.Stock(),
			Enabled:    enabled,
			Alpha:      alpha,
		}
		if staged, ok := st.StagedStock[m.ID]; ok {
			row.Stock = staged
			row.Pending = true
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
