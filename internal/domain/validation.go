package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountID = errors.New("wallet ID must be between 3 and 9 digits")
	ErrInvalidName      = errors.New("name must be between 1 and 9 English letters")
	ErrInvalidEmail     = errors.New("email must contain '@' symbol and be a valid format")
	ErrInvalidPhone     = errors.New("phone number must be between 1 and 13 digits")
	ErrInvalidPassword  = errors.New("password must be between 3 and 9 characters, and consist of letters or digits")
	ErrInvalidField     = errors.New("unknown profile field")
)

// ProfileField names an editable part of the profile.
type ProfileField string

const (
	FieldName  ProfileField = "name"
	FieldEmail ProfileField = "email"
	FieldPhone ProfileField = "phone"
)

var (
	accountIDRegex = regexp.MustCompile(`^\d{3,9}$`)
	nameRegex      = regexp.MustCompile(`^[a-zA-Z]{1,9}$`)
	emailRegex     = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w{2,}$`)
	phoneRegex     = regexp.MustCompile(`^\d{1,13}$`)
	passwordRegex  = regexp.MustCompile(`^[a-zA-Z0-9]{3,9}$`)
)

// ValidateAccountID validates a wallet identifier.
func ValidateAccountID(id string) error {
	if !accountIDRegex.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

// ValidatePassword validates a credential chosen at registration or change.
func ValidatePassword(password string) error {
	if !passwordRegex.MatchString(password) {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateProfileField validates value for the given profile field.
func ValidateProfileField(field ProfileField, value string) error {
	switch field {
	case FieldName:
		if !nameRegex.MatchString(value) {
			return ErrInvalidName
		}
	case FieldEmail:
		if !emailRegex.MatchString(value) {
			return ErrInvalidEmail
		}
	case FieldPhone:
		if !phoneRegex.MatchString(value) {
			return ErrInvalidPhone
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// ValidateProfile validates every field of p.
func ValidateProfile(p Profile) error {
	if err := ValidateProfileField(FieldName, p.Name); err != nil {
		return err
	}
	if err := ValidateProfileField(FieldEmail, p.Email); err != nil {
		return err
	}
	return ValidateProfileField(FieldPhone, p.Phone)
}

// Set replaces one field of the profile. The value is not validated.
func (p *Profile) Set(field ProfileField, value string) error {
	switch field {
	case FieldName:
		p.Name = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// ParseAmount parses user input into a monetary amount. Non-numeric input is
// reported as ErrInvalidAmount; range checks are left to the ledger.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	return amount, nil
}
