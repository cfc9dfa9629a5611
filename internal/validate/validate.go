// Package validate checks account-creation input before any record is
// constructed, collecting every failure as a human-readable message.
package validate

import (
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const minPasswordLength = 8

// Credentials validates the email format and password strength for account
// creation. The returned slice is empty when both pass.
func Credentials(email, password string) []string {
	var msgs []string

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		msgs = append(msgs, "email "+err.Error())
	}
	msgs = append(msgs, passwordMessages(password)...)

	return msgs
}

func passwordMessages(password string) []string {
	var msgs []string

	if err := validation.Validate(password, validation.Required, validation.Length(minPasswordLength, 0)); err != nil {
		msgs = append(msgs, "password "+err.Error())
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if password != "" && (!hasLetter || !hasDigit) {
		msgs = append(msgs, "password must contain at least one letter and one digit")
	}

	return msgs
}
