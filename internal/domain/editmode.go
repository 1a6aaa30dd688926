package domain

// Mode is the profile screen's edit state.
type Mode int

const (
	ReadOnly Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "read-only"
}

// ModeEvent drives Mode transitions.
type ModeEvent int

const (
	EditPressed  ModeEvent = iota // edit button in read-only mode
	SaveAccepted                  // validation and persistence succeeded
	SaveRejected                  // validation or persistence failed
)

// Next applies ev to m. Events that do not apply to m leave it unchanged.
func (m Mode) Next(ev ModeEvent) Mode {
	switch {
	case m == ReadOnly && ev == EditPressed:
		return Editing
	case m == Editing && ev == SaveAccepted:
		return ReadOnly
	}
	return m
}

// Interactive reports whether form controls accept input.
func (m Mode) Interactive() bool { return m == Editing }

// Opacity of enabled and disabled controls.
const (
	EnabledAlpha  = 1.0
	DisabledAlpha = 0.8
)

// Alpha returns the visual weight of controls in mode m.
func (m Mode) Alpha() float64 {
	if m.Interactive() {
		return EnabledAlpha
	}
	return DisabledAlpha
}
