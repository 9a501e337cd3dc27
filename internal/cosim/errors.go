package cosim

import "fmt"

// ConfigError reports an invalid run parameter. It is raised before any
// cycle is stepped; a run never starts with a bad configuration.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s=%v: %s", e.Param, e.Value, e.Reason)
}

// NumericError reports a non-finite value returned by a plant or controller
// collaborator. The kernel aborts immediately instead of letting NaN
// propagate through subsequent cycles.
type NumericError struct {
	Cycle  int
	Source string
	Field  string
	Value  float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("cycle %d: %s returned non-finite %s (%v)", e.Cycle, e.Source, e.Field, e.Value)
}
