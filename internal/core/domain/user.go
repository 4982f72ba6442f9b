package domain

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Credential bounds shared by username and password, in bytes.
const (
	MinCredentialLength = 6
	MaxCredentialLength = 16

	// MinEmailLength is the shortest accepted email, in bytes.
	MinEmailLength = 5
)

// User is a registered account.
//
// Password holds whatever the configured password verifier stored; with the
// default plain scheme that is the password as submitted.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Public returns the view handed out by session checks: id and username only,
// password and email blanked.
func (u *User) Public() *User {
	return &User{
		ID:       u.ID,
		Username: u.Username,
	}
}

var credentialRules = []validation.Rule{
	validation.Required,
	validation.Length(MinCredentialLength, MaxCredentialLength),
}

// ValidateCredentials checks the shared length rule for a username/password
// pair. Both fields fail with the same error so callers cannot tell which one
// was rejected.
func ValidateCredentials(username, password string) error {
	if err := validation.Validate(username, credentialRules...); err != nil {
		return ErrInvalidCredentials.WithDetails("username: " + err.Error())
	}
	if err := validation.Validate(password, credentialRules...); err != nil {
		return ErrInvalidCredentials.WithDetails("password: " + err.Error())
	}
	return nil
}

// ValidateEmail checks the registration email rule.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		validation.Length(MinEmailLength, 0),
	)
	if err != nil {
		return ErrEmailInvalid.WithDetails(err.Error())
	}
	return nil
}
