// ABOUTME: Contact form validation
// ABOUTME: Uses validator struct tags and maps failures to user-facing field messages
package models

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("contacttag", func(fl validator.FieldLevel) bool {
		return Tag(fl.Field().String()).Valid()
	})
	return v
}

// FieldErrors maps a form field name (name, email, phone, tags) to its message.
type FieldErrors map[string]string

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is returned when a contact cannot be submitted.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		msgs = append(msgs, e.Fields[f])
	}
	return "invalid contact: " + strings.Join(msgs, "; ")
}

// ValidateContact checks a contact as submitted from a form. Text fields are
// trimmed before checking. A nil error means the contact may be sent.
func ValidateContact(c Contact) error {
	c = c.Normalized()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate contact: %w", err)
	}

	fields := FieldErrors{}
	for _, fe := range verrs {
		key, msg := fieldMessage(fe)
		if _, seen := fields[key]; !seen {
			fields[key] = msg
		}
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) (string, string) {
	switch fe.StructField() {
	case "Name":
		return "name", "Name is required"
	case "Email":
		if fe.Tag() == "required" {
			return "email", "Email is required"
		}
		return "email", "Email is invalid"
	case "Phone":
		return "phone", "Phone is required"
	case "Tag":
		return "tags", "Tag is invalid"
	}
	return strings.ToLower(fe.Field()), fmt.Sprintf("%s is invalid", fe.Field())
}
