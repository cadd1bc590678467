// Package validation holds the form rules shared by the API server and the
// terminal front end. Rules return a Result; Run reports the first failure.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation rule patterns
var (
	EmailPattern      = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	CourseCodePattern = `^[A-Z]{2,4}\d{3}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100

	// PhoneMinDigits is the fewest digits a phone number may carry.
	PhoneMinDigits = 10
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	CourseCode *regexp.Regexp
	Special    *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	CourseCode: regexp.MustCompile(CourseCodePattern),
	Special:    regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`),
}

// Result is the outcome of one rule.
type Result struct {
	Valid   bool
	Message string
}

// OK is the passing result.
var OK = Result{Valid: true}

func fail(format string, args ...interface{}) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Err converts a failing result into an error, nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Message: r.Message}
}

// Error is a failed validation.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Run returns the first failing result, or OK.
func Run(results ...Result) Result {
	for _, r := range results {
		if !r.Valid {
			return r
		}
	}
	return OK
}

// Email checks a required email address.
func Email(email string) Result {
	if email == "" {
		return fail("Email is required")
	}
	if !CompiledPatterns.Email.MatchString(email) {
		return fail("Please enter a valid email address")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fail("Please enter a valid email address")
	}
	return OK
}

// PasswordStrength scores a password from 0 to 5, one point per satisfied
// rule. It is valid from a score of 4; Message names the first unmet rule.
type PasswordStrength struct {
	Result
	Score int
}

// Password grades a password.
func Password(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{Result: fail("Password is required")}
	}

	checks := []struct {
		ok      bool
		message string
	}{
		{utf8.RuneCountInString(password) >= PasswordMinLength, fmt.Sprintf("Password must be at least %d characters long", PasswordMinLength)},
		{strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"), "Password must contain at least one uppercase letter"},
		{strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz"), "Password must contain at least one lowercase letter"},
		{strings.ContainsAny(password, "0123456789"), "Password must contain at least one number"},
		{CompiledPatterns.Special.MatchString(password), "Password must contain at least one special character"},
	}

	score := 0
	message := ""
	for _, c := range checks {
		if c.ok {
			score++
		} else if message == "" {
			message = c.message
		}
	}
	if message == "" {
		message = "Password is strong"
	}

	return PasswordStrength{
		Result: Result{Valid: score >= 4, Message: message},
		Score:  score,
	}
}

// Required fails on blank values.
func Required(value, field string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("%s is required", field)
	}
	return OK
}

// MinLength requires value and at least min characters.
func MinLength(value string, min int, field string) Result {
	if value == "" {
		return fail("%s is required", field)
	}
	if utf8.RuneCountInString(value) < min {
		return fail("%s must be at least %d characters long", field, min)
	}
	return OK
}

// MaxLength allows empty values and caps the length.
func MaxLength(value string, max int, field string) Result {
	if utf8.RuneCountInString(value) > max {
		return fail("%s must be no more than %d characters long", field, max)
	}
	return OK
}

// Numeric allows empty values; anything else must parse as a number.
func Numeric(value, field string) Result {
	if value == "" {
		return OK
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return fail("%s must be a number", field)
	}
	return OK
}

// Phone allows empty values; otherwise at least PhoneMinDigits digits.
func Phone(phone string) Result {
	if phone == "" {
		return OK
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < PhoneMinDigits {
		return fail("Please enter a valid phone number")
	}
	return OK
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Date allows empty values; otherwise an ISO date or timestamp.
func Date(value, field string) Result {
	if value == "" {
		return OK
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return OK
		}
	}
	return fail("Please enter a valid %s", strings.ToLower(field))
}

// URL allows empty values; otherwise an absolute URL.
func URL(value string) Result {
	if value == "" {
		return OK
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return fail("Please enter a valid URL")
	}
	return OK
}

// FileSize caps a file at maxBytes.
func FileSize(size, maxBytes int64) Result {
	if size <= maxBytes {
		return OK
	}
	return fail("File size must be less than %.2f MB", float64(maxBytes)/(1024*1024))
}

// FileType accepts a file whose MIME type or ".ext" extension is listed.
func FileType(name, mimeType string, allowed []string) Result {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if mimeType != "" && a == mimeType {
			return OK
		}
		if ext != "" && strings.ToLower(a) == ext {
			return OK
		}
	}
	return fail("File type not supported")
}

// StringValidation is a configurable rule for one string field.
type StringValidation struct {
	Field    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
	// PatternMessage replaces the generic pattern failure message.
	PatternMessage string
}

// NewStringValidation creates a required string rule.
func NewStringValidation(field, value string) *StringValidation {
	return &StringValidation{
		Field:    field,
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp, message string) *StringValidation {
	v.Pattern = pattern
	v.PatternMessage = message
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate applies the configured checks in order.
func (v *StringValidation) Validate() Result {
	if strings.TrimSpace(v.Value) == "" {
		if v.Required {
			return fail("%s is required", v.Field)
		}
		return OK
	}

	n := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && n < v.MinLen {
		return fail("%s must be at least %d characters long", v.Field, v.MinLen)
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return fail("%s must be no more than %d characters long", v.Field, v.MaxLen)
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		if v.PatternMessage != "" {
			return fail("%s", v.PatternMessage)
		}
		return fail("%s has an invalid format", v.Field)
	}
	return OK
}
