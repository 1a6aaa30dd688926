package domain

import "time"

// User is the profile owned by a single chat.
type User struct {
	ChatID    int64
	FirstName string
	LastName  string
	Gender    string
	Age       int
	Email     string
	Location  string
	Phone     string
	CreatedAt time.Time // UTC
	UpdatedAt time.Time // UTC
}

// FullName joins first and last name for greetings and e-mail headers.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
