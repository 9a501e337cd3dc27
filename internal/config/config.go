// YAML run configuration with CUE schema validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"photonlink-sim/internal/control"
	"photonlink-sim/internal/cosim"
	"photonlink-sim/internal/link"
	"photonlink-sim/internal/plant"
	"photonlink-sim/internal/scenario"
)

// LinkConfig enables and parameterizes the link monitor.
type LinkConfig struct {
	Enabled     bool `yaml:"enabled"`
	FailsToDown uint `yaml:"fails_to_down"`
	PassesToUp  uint `yaml:"passes_to_up"`
}

// Params converts to the monitor parameter record.
func (l LinkConfig) Params() link.Params {
	return link.Params{FailsToDown: l.FailsToDown, PassesToUp: l.PassesToUp}
}

// ControllerConfig selects and tunes the feedback controller.
type ControllerConfig struct {
	Kind     string                 `yaml:"kind"` // none | pid | bangbang
	PID      control.PIDParams      `yaml:"pid"`
	BangBang control.BangBangParams `yaml:"bangbang"`
}

// Build returns the configured controller, or nil for open loop.
func (c ControllerConfig) Build() (control.Controller, error) {
	switch c.Kind {
	case "", "none":
		return nil, nil
	case "pid":
		return control.NewPID(c.PID), nil
	case "bangbang":
		return control.NewBangBang(c.BangBang), nil
	default:
		return nil, &cosim.ConfigError{Param: "controller.kind", Value: c.Kind, Reason: "must be none, pid, or bangbang"}
	}
}

// SimulationConfig is the root configuration for one run.
type SimulationConfig struct {
	Name           string           `yaml:"name"`
	Cycles         int              `yaml:"cycles"`
	ChunkSize      int              `yaml:"chunk_size"`
	Seed           uint64           `yaml:"seed"`
	InitialTempC   float64          `yaml:"initial_temp_c"`
	DetuneTargetNm float64          `yaml:"detune_target_nm"`
	Plant          plant.Params     `yaml:"plant"`
	Schedule       scenario.Spec    `yaml:"schedule"`
	Controller     ControllerConfig `yaml:"controller"`
	Link           LinkConfig       `yaml:"link"`
}

// Defaults returns a runnable configuration matching the stock scenario.
func Defaults() SimulationConfig {
	p := plant.DefaultParams()
	return SimulationConfig{
		Name:         "default",
		Cycles:       100,
		ChunkSize:    10,
		Seed:         0,
		InitialTempC: p.Thermal.AmbientC,
		Plant:        p,
		Schedule:     scenario.Spec{Kind: "constant", HeaterDuty: 0.5, WorkloadFrac: 0.3},
		Controller:   ControllerConfig{Kind: "none", PID: control.DefaultPIDParams(), BangBang: control.DefaultBangBangParams()},
		Link:         LinkConfig{Enabled: true, FailsToDown: 4, PassesToUp: 8},
	}
}

// Load reads a YAML config, validates it against the CUE schema, applies
// defaults for omitted sections, and runs the fail-fast parameter checks.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects parameters that would make the run ill-defined. It runs
// before any cycle is stepped; a bad config never partially runs.
func (c *SimulationConfig) Validate() error {
	if c.Name == "" {
		return &cosim.ConfigError{Param: "name", Value: c.Name, Reason: "must be non-empty"}
	}
	if c.Cycles < 0 {
		return &cosim.ConfigError{Param: "cycles", Value: c.Cycles, Reason: "must be >= 0"}
	}
	if c.ChunkSize <= 0 {
		return &cosim.ConfigError{Param: "chunk_size", Value: c.ChunkSize, Reason: "must be > 0"}
	}
	if c.Link.Enabled {
		if c.Link.FailsToDown == 0 {
			return &cosim.ConfigError{Param: "link.fails_to_down", Value: c.Link.FailsToDown, Reason: "must be > 0"}
		}
		if c.Link.PassesToUp == 0 {
			return &cosim.ConfigError{Param: "link.passes_to_up", Value: c.Link.PassesToUp, Reason: "must be > 0"}
		}
	}
	if _, err := c.Controller.Build(); err != nil {
		return err
	}
	if _, err := c.Schedule.Build(); err != nil {
		return err
	}
	return nil
}

// RunConfig converts to the kernel's parameter record.
func (c *SimulationConfig) RunConfig() cosim.RunConfig {
	return cosim.RunConfig{
		ScenarioName:   c.Name,
		TotalCycles:    c.Cycles,
		ChunkSize:      c.ChunkSize,
		Seed:           c.Seed,
		DetuneTargetNm: c.DetuneTargetNm,
	}
}
