package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/armkit/errors"
)

var (
	resourceGroupPattern = regexp.MustCompile(`^[-\w._()]+$`)
	resourceNamePattern  = regexp.MustCompile(`^[A-Za-z0-9][-A-Za-z0-9_.]*$`)
	queueNamePattern     = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9])*$`)
)

// Validator collects path and query parameter errors for one operation
// before any request is sent.
type Validator struct {
	errors []FieldError
}

// FieldError is a validation failure for one parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded failures in check order.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_INPUT AppError listing every failure, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}

// Err is Validate returning a plain error, so a nil result compares equal to nil.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// SubscriptionID checks that value is a non-nil UUID.
func (v *Validator) SubscriptionID(field, value string) *Validator {
	return v.RequiredUUID(field, value)
}

// RequiredUUID checks that value is a non-nil UUID.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
		return v
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		v.AddError(field, "must be a valid UUID")
		return v
	}
	if parsed == uuid.Nil {
		v.AddError(field, "must not be the nil UUID")
	}
	return v
}

// ResourceGroup checks the resource group naming rules: 1 to 90 characters
// of letters, digits, underscores, hyphens, periods and parentheses, not
// ending in a period.
func (v *Validator) ResourceGroup(field, value string) *Validator {
	switch {
	case value == "":
		v.AddError(field, "is required")
	case len(value) > 90:
		v.AddError(field, "must be 90 characters or less")
	case !resourceGroupPattern.MatchString(value) || strings.HasSuffix(value, "."):
		v.AddError(field, "contains invalid characters")
	}
	return v
}

// ResourceName checks a generic child resource name.
func (v *Validator) ResourceName(field, value string) *Validator {
	switch {
	case value == "":
		v.AddError(field, "is required")
	case len(value) > 260:
		v.AddError(field, "must be 260 characters or less")
	case !resourceNamePattern.MatchString(value):
		v.AddError(field, "does not match required format")
	}
	return v
}

// QueueName checks the storage queue naming rules: 3 to 63 lowercase
// letters, digits and single hyphens, starting and ending alphanumeric.
func (v *Validator) QueueName(field, value string) *Validator {
	switch {
	case value == "":
		v.AddError(field, "is required")
	case len(value) < 3 || len(value) > 63:
		v.AddError(field, "must be between 3 and 63 characters")
	case !queueNamePattern.MatchString(value):
		v.AddError(field, "must be lowercase letters, digits and single hyphens")
	}
	return v
}

// MaxLength checks that value has at most maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// Pattern checks a non-empty value against re.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp) *Validator {
	if value != "" && !re.MatchString(value) {
		v.AddError(field, "does not match required format")
	}
	return v
}

// Range checks that value lies in [minVal, maxVal].
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// OptionalRange is Range for a parameter that may be unset.
func (v *Validator) OptionalRange(field string, value *int32, minVal, maxVal int) *Validator {
	if value == nil {
		return v
	}
	return v.Range(field, int(*value), minVal, maxVal)
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required parameter.
func Required(field, value string) error {
	return New().Required(field, value).Err()
}

// ParseSubscriptionID validates and parses a subscription id.
func ParseSubscriptionID(value string) (uuid.UUID, error) {
	if err := New().SubscriptionID("subscriptionId", value).Err(); err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(value), nil
}
