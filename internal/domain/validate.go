package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError names the first profile field that failed validation.
// Its Key doubles as the message catalog key.
type ValidationError int

const (
	FirstNameMissing ValidationError = iota + 1
	LastNameMissing
	AgeMissing
	InvalidAge
	EmailMissing
	InvalidEmail
)

var validationKeys = map[ValidationError]string{
	FirstNameMissing: "Please enter your first name.",
	LastNameMissing:  "Please enter your last name.",
	AgeMissing:       "Please enter your age.",
	InvalidAge:       "Age must be a whole number.",
	EmailMissing:     "Please enter your e-mail.",
	InvalidEmail:     "E-mail address is not valid.",
}

// Key returns the untranslated user-facing message.
func (e ValidationError) Key() string {
	if k, ok := validationKeys[e]; ok {
		return k
	}
	return "Invalid profile."
}

func (e ValidationError) Error() string { return e.Key() }

// ProfileInput is the raw text of the profile form.
type ProfileInput struct {
	FirstName string
	LastName  string
	Gender    string
	Age       string
	Email     string
	Location  string
	Phone     string
}

// ValidProfile is a ProfileInput that passed Validate.
type ValidProfile struct {
	FirstName string
	LastName  string
	Gender    string
	Age       int
	Email     string
	Location  string
	Phone     string
}

// Apply copies the validated values onto u.
func (p ValidProfile) Apply(u *User) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Gender = p.Gender
	u.Age = p.Age
	u.Email = p.Email
	u.Location = p.Location
	u.Phone = p.Phone
}

var validate = validator.New()

// Validate checks required fields in form order: first name, last name,
// age, e-mail. The first violation is returned as a ValidationError.
func Validate(in ProfileInput) (ValidProfile, error) {
	out := ValidProfile{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Gender:    strings.TrimSpace(in.Gender),
		Email:     strings.TrimSpace(in.Email),
		Location:  strings.TrimSpace(in.Location),
		Phone:     strings.TrimSpace(in.Phone),
	}
	if out.FirstName == "" {
		return ValidProfile{}, FirstNameMissing
	}
	if out.LastName == "" {
		return ValidProfile{}, LastNameMissing
	}

	age := strings.TrimSpace(in.Age)
	if age == "" {
		return ValidProfile{}, AgeMissing
	}
	n, err := ParseAge(age)
	if err != nil {
		return ValidProfile{}, InvalidAge
	}
	out.Age = n

	if out.Email == "" {
		return ValidProfile{}, EmailMissing
	}
	if err := validate.Var(out.Email, "email"); err != nil {
		return ValidProfile{}, InvalidEmail
	}
	return out, nil
}
