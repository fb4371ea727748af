package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate enforces the configuration's struct tags: required fields, log
// level and format values, port ranges, max_users (1..100) and positive
// durations. The per-request length caps (user name, password, file fields,
// search query) are not part of Config; pkg/rpc checks them on each request.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := structValidator.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(verrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag())
	}
	return msg
}
