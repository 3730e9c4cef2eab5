// Package config provides configuration management for the Props Edge application.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/props-edge/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("stattypes", validateStatTypes)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateStatTypes validates that map keys are recognized stat types
func validateStatTypes(fl validator.FieldLevel) bool {
	floors, ok := fl.Field().Interface().(map[string]float64)
	if !ok {
		return false
	}
	for key := range floors {
		if _, err := models.ParseStatType(key); err != nil {
			return false
		}
	}
	return true
}

// validateCrossField performs validations spanning multiple fields
func validateCrossField(cfg *Config) error {
	if cfg.Models.Sentinel.HighPctThreshold < cfg.Models.Sentinel.MidPctThreshold {
		return fmt.Errorf("sentinel high_pct_threshold must be >= mid_pct_threshold")
	}
	if !cfg.Models.Pulsar.Active && !cfg.Models.Sentinel.Active && !cfg.Models.Maverick.Active {
		return fmt.Errorf("at least one model must be active")
	}
	return nil
}

// formatValidationErrors converts validator errors to a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf("\n  - field '%s' failed '%s' validation", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
