package collector

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("method ordering misconfigured")

// ConfigurationError reports that no usable ordering strategy could be
// resolved for a class. It is never recovered inside the collector.
type ConfigurationError struct {
	Class  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s for %s: %s", ErrConfiguration, e.Class, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
