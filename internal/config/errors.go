package config

import "fmt"

// ConfigurationError reports a structural problem in the deal configuration.
// Validation fails fast before any period processing begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
