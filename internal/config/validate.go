package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
			return name
		})
	})
	return validate
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is one invalid setting, named by its config path.
type FieldError struct {
	Path  string
	Rule  string
	Param string
	Value any
}

func (e FieldError) String() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Path)
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", e.Path, e.Param, e.Value)
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", e.Path, e.Param, e.Value)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", e.Path, e.Param, e.Value)
	case "excludesall":
		return fmt.Sprintf("%s must be a plain directory name, got %q", e.Path, e.Value)
	default:
		return fmt.Sprintf("%s failed %s", e.Path, e.Rule)
	}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks c against its validate tags.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate configuration: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Path:  configPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

// configPath drops the root struct name: "Config.convert.input_dir"
// becomes "convert.input_dir".
func configPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}
