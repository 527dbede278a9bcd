package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ValidateConfig validates a configuration with a fresh validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{errors: make(ValidationErrors, 0)}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateRefine(&cfg.Refine)
	v.validateDesign(&cfg.Design)
	v.validateFold(&cfg.Fold)
	v.validateRelax(&cfg.Relax)
	v.validateDisplay(&cfg.Display)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError("log.format", cfg.Format, "must be one of auto, text, json")
	}
}

func (v *Validator) validateRefine(cfg *RefineConfig) {
	v.validateEndpoint("refine.endpoint", cfg.Endpoint)
	if cfg.Model == "" {
		v.addError("refine.model", cfg.Model, "model cannot be empty")
	}
	if cfg.Timeout <= 0 {
		v.addError("refine.timeout", cfg.Timeout, "timeout must be positive")
	}
}

func (v *Validator) validateDesign(cfg *DesignConfig) {
	v.validateEndpoint("design.endpoint", cfg.Endpoint)
	if cfg.Timeout <= 0 {
		v.addError("design.timeout", cfg.Timeout, "timeout must be positive")
	}
	if cfg.NumSequences < 1 || cfg.NumSequences > 100 {
		v.addError("design.num_sequences", cfg.NumSequences, "must be between 1 and 100")
	}
}

func (v *Validator) validateFold(cfg *FoldConfig) {
	v.validateEndpoint("fold.endpoint", cfg.Endpoint)
	if cfg.Timeout <= 0 {
		v.addError("fold.timeout", cfg.Timeout, "timeout must be positive")
	}
}

func (v *Validator) validateRelax(cfg *RelaxConfig) {
	if cfg.Path == "" {
		v.addError("relax.path", cfg.Path, "executable path cannot be empty")
	}
	if cfg.Timeout <= 0 {
		v.addError("relax.timeout", cfg.Timeout, "timeout must be positive")
	}
	if cfg.MaxIterations < 0 {
		v.addError("relax.max_iterations", cfg.MaxIterations, "cannot be negative")
	}
	if cfg.Stiffness < 0 {
		v.addError("relax.stiffness", cfg.Stiffness, "cannot be negative")
	}
}

func (v *Validator) validateDisplay(cfg *DisplayConfig) {
	switch cfg.ColorScheme {
	case "rainbow", "lDDT":
	default:
		v.addError("display.color_scheme", cfg.ColorScheme, "must be rainbow or lDDT")
	}
	switch cfg.Variant {
	case "raw", "relaxed":
	default:
		v.addError("display.variant", cfg.Variant, "must be raw or relaxed")
	}
}

func (v *Validator) validateEndpoint(field, endpoint string) {
	if endpoint == "" {
		v.addError(field, endpoint, "endpoint cannot be empty")
		return
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		v.addError(field, endpoint, "must be a valid http(s) URL")
	}
}
