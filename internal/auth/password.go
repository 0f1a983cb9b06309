package auth

import (
	"errors"
	"unicode"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrPasswordTooWeak  = errors.New("password must contain a letter and a digit")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidatePassword checks the password format and its confirmation.
func ValidatePassword(password, confirm string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrPasswordTooWeak
	}

	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
