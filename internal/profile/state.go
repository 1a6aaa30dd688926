package profile

import (
	"errors"
	"strconv"

	"github.com/google/uuid"

	"github.com/ykvlv/pill-profile-bot/internal/domain"
)

var (
	ErrNotEditing      = errors.New("profile is not in edit mode")
	ErrUnknownField    = errors.New("unknown profile field")
	ErrUnknownMedicine = errors.New("unknown medicine")
	ErrUnknownPreset   = errors.New("unknown medicine preset")
	ErrInvalidReminder = errors.New("invalid reminder interval")
)

// Field identifies a profile form field.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldGender    Field = "gender"
	FieldAge       Field = "age"
	FieldLocation  Field = "location"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
)

// Fields lists the form fields in display order.
var Fields = []Field{
	FieldFirstName, FieldLastName, FieldGender, FieldAge,
	FieldLocation, FieldEmail, FieldPhone,
}

// ParseField maps a callback or command argument to a Field.
func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Derived holds values recomputed on every refresh.
type Derived struct {
	HasMedicine        bool
	MedicineName       string
	Stock              int
	Unit               string
	RemainingDoseUnits int
	ShouldNotify       bool
}

// State is the full screen state of one chat. Operations never mutate a
// State in place; they return a modified copy.
type State struct {
	ChatID      int64
	Mode        domain.Mode
	User        *domain.User // nil until the first successful save
	Draft       domain.ProfileInput
	Medicines   []domain.Medicine
	StagedStock map[uuid.UUID]int
	Reminder    domain.ReminderInterval
	Derived     Derived

	// Set while the user is entering a location; the next Open keeps the draft.
	ReturningFromLocation bool
}

func newState(chatID int64) State {
	return State{
		ChatID:   chatID,
		Mode:     domain.ReadOnly,
		Reminder: domain.DefaultReminderInterval,
		Derived:  Derived{Unit: domain.UnitDays},
	}
}

func (s State) clone() State {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	if s.Medicines != nil {
		c.Medicines = append([]domain.Medicine(nil), s.Medicines...)
	}
	if s.StagedStock != nil {
		c.StagedStock = make(map[uuid.UUID]int, len(s.StagedStock))
		for k, v := range s.StagedStock {
			c.StagedStock[k] = v
		}
	}
	return c
}

// CurrentMedicine returns the medicine the reminder policy is evaluated on.
func (s State) CurrentMedicine() (domain.Medicine, bool) {
	if len(s.Medicines) == 0 {
		return domain.Medicine{}, false
	}
	return s.Medicines[len(s.Medicines)-1], true
}

func draftFromUser(u *domain.User) domain.ProfileInput {
	if u == nil {
		return domain.ProfileInput{}
	}
	return domain.ProfileInput{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    u.Gender,
		Age:       strconv.Itoa(u.Age),
		Email:     u.Email,
		Location:  u.Location,
		Phone:     u.Phone,
	}
}

// PressEdit moves a read-only screen into edit mode regardless of field
// contents. The draft starts from the saved profile.
func (s State) PressEdit() State {
	c := s.clone()
	if c.Mode == domain.ReadOnly {
		c.Draft = draftFromUser(c.User)
		c.StagedStock = nil
	}
	c.Mode = c.Mode.Next(domain.EditPressed)
	return c
}

// SetField stages a new value for a form field.
func (s State) SetField(f Field, value string) (State, error) {
	if !s.Mode.Interactive() {
		return s, ErrNotEditing
	}
	c := s.clone()
	switch f {
	case FieldFirstName:
		c.Draft.FirstName = value
	case FieldLastName:
		c.Draft.LastName = value
	case FieldGender:
		c.Draft.Gender = value
	case FieldAge:
		c.Draft.Age = value
	case FieldLocation:
		c.Draft.Location = value
	case FieldEmail:
		c.Draft.Email = value
	case FieldPhone:
		c.Draft.Phone = value
	default:
		return s, ErrUnknownField
	}
	return c, nil
}

// StageStock records a pending stock edit for a medicine row. It is only
// written on a successful save.
func (s State) StageStock(id uuid.UUID, stock int) (State, error) {
	if !s.Mode.Interactive() {
		return s, ErrNotEditing
	}
	if stock < 0 {
		return s, domain.ErrNegativeNumber
	}
	if !containsMedicine(s.Medicines, id) {
		return s, ErrUnknownMedicine
	}
	c := s.clone()
	if c.StagedStock == nil {
		c.StagedStock = make(map[uuid.UUID]int)
	}
	c.StagedStock[id] = stock
	return c, nil
}

// SelectReminder picks a lead time without saving it.
func (s State) SelectReminder(r domain.ReminderInterval) (State, error) {
	if !s.Mode.Interactive() {
		return s, ErrNotEditing
	}
	if !r.Valid() {
		return s, ErrInvalidReminder
	}
	c := s.clone()
	c.Reminder = r
	return c, nil
}

// Field returns the current draft value of f.
func (s State) Field(f Field) string {
	switch f {
	case FieldFirstName:
		return s.Draft.FirstName
	case FieldLastName:
		return s.Draft.LastName
	case FieldGender:
		return s.Draft.Gender
	case FieldAge:
		return s.Draft.Age
	case FieldLocation:
		return s.Draft.Location
	case FieldEmail:
		return s.Draft.Email
	case FieldPhone:
		return s.Draft.Phone
	}
	return ""
}

// derive recomputes stock, unit label and the reminder policy.
func (s State) derive() State {
	c := s.clone()
	m, ok := c.CurrentMedicine()
	if !ok {
		c.Derived = Derived{Unit: domain.UnitDays}
		return c
	}
	stock := m.Stock()
	remaining := m.RemainingDoseUnits()
	c.Derived = Derived{
		HasMedicine:        true,
		MedicineName:       m.Name,
		Stock:              stock,
		Unit:               domain.UnitLabel(stock, m.IntervalDays),
		RemainingDoseUnits: remaining,
		ShouldNotify:       domain.ShouldNotify(remaining, c.Reminder.Days()),
	}
	return c
}
