package security

import (
	"strings"
	"unicode/utf8"

	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength  = 100
	MaxEmailLength = 255
)

var suspiciousPatterns = []string{"http://", "https://", "www.", ".com", ".net", ".org"}

var validate = validator.New()

// SubscriptionData is the sanitized form input.
type SubscriptionData struct {
	Name    string
	Surname string
	Email   string
}

type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// IsEmail reports whether s is a syntactically valid address.
func IsEmail(s string) bool {
	return s != "" && validate.Var(s, "required,email") == nil
}

// ValidateSubscription checks every rule and joins all failures into one message.
func ValidateSubscription(data SubscriptionData, msgs *i18n.Catalog) ValidationResult {
	var errs []string

	switch {
	case data.Name == "":
		errs = append(errs, msgs.T(i18n.NameRequired))
	case utf8.RuneCountInString(data.Name) > MaxNameLength:
		errs = append(errs, msgs.T(i18n.NameTooLong, MaxNameLength))
	}

	switch {
	case data.Surname == "":
		errs = append(errs, msgs.T(i18n.SurnameRequired))
	case utf8.RuneCountInString(data.Surname) > MaxNameLength:
		errs = append(errs, msgs.T(i18n.SurnameTooLong, MaxNameLength))
	}

	switch {
	case data.Email == "":
		errs = append(errs, msgs.T(i18n.EmailRequired))
	case !IsEmail(data.Email):
		errs = append(errs, msgs.T(i18n.EmailInvalid))
	case utf8.RuneCountInString(data.Email) > MaxEmailLength:
		errs = append(errs, msgs.T(i18n.EmailTooLong, MaxEmailLength))
	}

	if looksLikeSpam(data.Name) || looksLikeSpam(data.Surname) {
		errs = append(errs, msgs.T(i18n.SpamContent))
	}

	return ValidationResult{
		Valid:   len(errs) == 0,
		Message: strings.Join(errs, " "),
		Errors:  errs,
	}
}

func looksLikeSpam(value string) bool {
	lower := strings.ToLower(value)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
