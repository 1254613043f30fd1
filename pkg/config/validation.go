package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags plus the custom
// rules that cannot be expressed in tags.
//
// Log level normalization is handled in ApplyDefaults, not here; validation
// accepts both uppercase and lowercase levels.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	http := &cfg.Adapters.HTTP

	// The upload endpoint must never collide with the deny-list, or every
	// upload would be rejected before routing.
	for i, denied := range http.DeniedPaths {
		if denied == http.UploadPath {
			return fmt.Errorf("adapters.http: upload_path %q is also in denied_paths", http.UploadPath)
		}
		if len(denied) == 0 || denied[0] != '/' {
			return fmt.Errorf("adapters.http: denied_paths[%d] %q must start with /", i, denied)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages, reporting the first failure with its field context.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
