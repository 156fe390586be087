package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joliday/backend/internal/domain"
)

// Clock returns the current instant. Services derive "today" from it so
// tests can pin the date.
type Clock func() time.Time

const (
	minNameLen       = 3
	maxNameLen       = 50
	maxPostalCodeLen = 15
	maxDescLen       = 150
	maxMessageLen    = 1000
)

// validateName trims name and enforces the 3–50 character rule shared by
// trips and activities.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return "", fmt.Errorf("%w: name must be between %d and %d characters", domain.ErrValidation, minNameLen, maxNameLen)
	}
	return name, nil
}

// validateAddress trims every field and requires all of them.
func validateAddress(a domain.Address) (domain.Address, error) {
	a = domain.Address{
		Country:      strings.TrimSpace(a.Country),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		City:         strings.TrimSpace(a.City),
		StreetName:   strings.TrimSpace(a.StreetName),
		StreetNumber: strings.TrimSpace(a.StreetNumber),
	}
	switch {
	case a.Country == "":
		return a, fmt.Errorf("%w: country is required", domain.ErrValidation)
	case a.PostalCode == "":
		return a, fmt.Errorf("%w: postal code is required", domain.ErrValidation)
	case utf8.RuneCountInString(a.PostalCode) > maxPostalCodeLen:
		return a, fmt.Errorf("%w: postal code must be at most %d characters", domain.ErrValidation, maxPostalCodeLen)
	case a.City == "":
		return a, fmt.Errorf("%w: city is required", domain.ErrValidation)
	case a.StreetName == "":
		return a, fmt.Errorf("%w: street name is required", domain.ErrValidation)
	case a.StreetNumber == "":
		return a, fmt.Errorf("%w: street number is required", domain.ErrValidation)
	}
	return a, nil
}

// validateRange normalises both ends to calendar dates and requires start ≤ end.
func validateRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return start, end, fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	start, end = domain.DateOf(start), domain.DateOf(end)
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	return start, end, nil
}
