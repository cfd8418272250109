package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PasswordStrength buckets a password for the sign-up strength meter.
type PasswordStrength string

const (
	PasswordWeak   PasswordStrength = "weak"
	PasswordMedium PasswordStrength = "medium"
	PasswordStrong PasswordStrength = "strong"
)

var (
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex   = regexp.MustCompile(`^[0-9]{10}$`)
	licenseRegex = regexp.MustCompile(`^[A-Z]{3}-[0-9]{6}$`)
)

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// IsValidEmail checks the local@domain.tld shape without embedded whitespace.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone reports whether the number has exactly 10 digits once whitespace is removed.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(stripWhitespace(phone))
}

func IsValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= 2
}

// IsValidFutureDate reports whether date falls on today or a later calendar day.
// Both values are compared as calendar days in now's location.
func IsValidFutureDate(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !StartOfDay(date.In(now.Location())).Before(StartOfDay(now))
}

// IsValidLicense checks the XXX-NNNNNN license format, case-insensitive.
func IsValidLicense(license string) bool {
	return licenseRegex.MatchString(strings.ToUpper(license))
}

// IsValidFees reports whether the value parses to a finite number above zero.
func IsValidFees(fees string) bool {
	num, err := strconv.ParseFloat(strings.TrimSpace(fees), 64)
	if err != nil {
		return false
	}
	return !math.IsInf(num, 0) && !math.IsNaN(num) && num > 0
}

func GetPasswordStrength(password string) PasswordStrength {
	length := utf8.RuneCountInString(password)
	if length < 6 {
		return PasswordWeak
	}
	if length < 10 {
		return PasswordMedium
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}

	score := 0
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if ok {
			score++
		}
	}

	if score >= 3 {
		return PasswordStrong
	}
	return PasswordMedium
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
