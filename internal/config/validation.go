package config

import (
	"reflect"
	"slices"
	"strings"

	"imgview/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report yaml names so errors match what the user wrote.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, err := glob.Compile(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return slices.Contains(ListThemes(), fl.Field().String())
	})
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts the first validator failure into a
// ConfigError naming the offending parameter.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		param := e.Namespace()
		// Drop the root struct name.
		if i := strings.Index(param, "."); i >= 0 {
			param = param[i+1:]
		}
		return errors.NewConfigError(
			"validation failed on '"+e.Tag()+"' tag", param, errors.InvalidConfig,
			errors.Newf("value %v", e.Value()))
	}
	return errors.NewConfigError("validation failed", "", errors.InvalidConfig, err)
}
