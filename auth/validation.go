package auth

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validateLogin checks the login form fields before any network call.
func validateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}

// validateSignup checks the signup form fields and the terms-acceptance flag.
func validateSignup(name, email, password string, termsAccepted bool) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Reason: "invalid format"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	if !termsAccepted {
		return &ValidationError{Field: "terms", Reason: "terms of use must be accepted"}
	}
	return nil
}
