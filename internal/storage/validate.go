package storage

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateFields checks that every required field is set. Fields are checked in declaration
// order and the first missing one is reported.
func (s *Store) validateFields(fields model.ContactFields) error {
	err := s.validate.Struct(fields)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		return &ValidationError{Field: invalid[0].Field()}
	}
	return fmt.Errorf("validate contact: %w", err)
}
