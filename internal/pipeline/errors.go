package pipeline

import "fmt"

// FatalError aborts the whole run. It names the offending provider so the
// caller can surface an actionable message (invalid credential, exhausted
// quota, no model resolvable).
type FatalError struct {
	Provider string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal %s error: %v", e.Provider, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid run configuration. The run never starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid run config: " + e.Reason
}
