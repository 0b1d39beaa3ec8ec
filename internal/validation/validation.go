package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Rule maps a failed validator tag to the message shown to the user.
type Rule struct {
	Tag     string
	Message string
}

// Error is a form that failed validation; Message is user-facing.
type Error struct {
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

func Message(err error) (string, bool) {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Message, true
	}
	return "", false
}

// Validator wraps go-playground validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks form and reports the first rule, in rule order, whose tag failed.
func (v *Validator) Validate(form interface{}, rules ...Rule) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	failed := make(map[string][]string)
	for _, fe := range fieldErrs {
		failed[fe.Tag()] = append(failed[fe.Tag()], fe.Field())
	}
	for _, rule := range rules {
		if fields, ok := failed[rule.Tag]; ok {
			return &Error{Message: rule.Message, Fields: fields}
		}
	}

	fe := fieldErrs[0]
	return &Error{Message: fmt.Sprintf("%s is invalid", fe.Field()), Fields: []string{fe.Field()}}
}
