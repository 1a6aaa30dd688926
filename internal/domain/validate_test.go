package domain

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   ProfileInput
		want error
	}{
		{"missing first name", ProfileInput{FirstName: "", LastName: "Doe", Age: "30", Email: "a@b.com"}, FirstNameMissing},
		{"blank first name", ProfileInput{FirstName: "  ", LastName: "Doe", Age: "30", Email: "a@b.com"}, FirstNameMissing},
		{"missing last name", ProfileInput{FirstName: "A", Age: "30", Email: "a@b.com"}, LastNameMissing},
		{"missing age", ProfileInput{FirstName: "A", LastName: "B", Email: "a@b.com"}, AgeMissing},
		{"negative age", ProfileInput{FirstName: "A", LastName: "B", Age: "-1", Email: "a@b.com"}, InvalidAge},
		{"text age", ProfileInput{FirstName: "A", LastName: "B", Age: "thirty", Email: "a@b.com"}, InvalidAge},
		{"missing email", ProfileInput{FirstName: "A", LastName: "B", Age: "30"}, EmailMissing},
		{"bad email", ProfileInput{FirstName: "A", LastName: "B", Age: "30", Email: "not-an-email"}, InvalidEmail},
		{"valid", ProfileInput{FirstName: "A", LastName: "B", Age: "30", Email: "a@b.com"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidate_TrimsAndKeepsOptionalFields(t *testing.T) {
	p, err := Validate(ProfileInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Age:       " 36 ",
		Email:     "ada@example.org",
		Gender:    "female ",
		Location:  "Dakar",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.FirstName != "Ada" || p.Age != 36 || p.Gender != "female" || p.Phone != "" {
		t.Fatalf("unexpected profile %+v", p)
	}

	var u User
	p.Apply(&u)
	if u.FullName() != "Ada Lovelace" || u.Location != "Dakar" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestValidationError_AsError(t *testing.T) {
	var ve ValidationError
	_, err := Validate(ProfileInput{FirstName: "A", LastName: "B", Age: "x", Email: "a@b.com"})
	if !errors.As(err, &ve) || ve != InvalidAge {
		t.Fatalf("want InvalidAge, got %v", err)
	}
	if ve.Key() == "" {
		t.Fatal("empty message key")
	}
}
