package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// New builds the shared validator with the injected phone-number rule. The
// pattern is configuration, not a hardcoded literal, so tests and other
// locales can swap it out.
func New(phonePattern string) (*validator.Validate, error) {
	phoneRe, err := regexp.Compile(phonePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid phone pattern: %w", err)
	}

	v := validator.New()
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	return v, nil
}
