package services

import (
	"regexp"

	"github.com/checkinhq/checkin-backend/internal/reason"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{4,20}$`)
	passwordPattern = regexp.MustCompile(`^[^\s]{6,20}$`)
)

// ValidationError is a policy violation carrying a machine-readable reason
// code for the client.
type ValidationError struct {
	Reason  int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return &ValidationError{
			Reason:  reason.UsernameInvalid,
			Field:   "username",
			Message: "Username does not meet minimum standards",
		}
	}
	return nil
}

func ValidatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		return &ValidationError{
			Reason:  reason.PasswordInvalid,
			Field:   "password",
			Message: "Password does not meet minimum standards",
		}
	}
	return nil
}
