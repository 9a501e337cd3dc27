package control

// BangBangParams tunes the threshold controller.
type BangBangParams struct {
	DetuneDeadbandNm float64 `yaml:"detune_deadband_nm"`
	StepSize         float64 `yaml:"step_size"`
	MinDuty          float64 `yaml:"min_duty"`
	MaxDuty          float64 `yaml:"max_duty"`
	UnlockBoost      float64 `yaml:"unlock_boost"`
}

// DefaultBangBangParams are tuned for the stock plant defaults.
func DefaultBangBangParams() BangBangParams {
	return BangBangParams{
		DetuneDeadbandNm: 0.1,
		StepSize:         0.05,
		MinDuty:          0.0,
		MaxDuty:          1.0,
		UnlockBoost:      0.2,
	}
}

// BangBang nudges the heater duty up or down by a fixed step whenever the
// detune error leaves the deadband, and holds inside it. Unlocked drives
// the heater up aggressively.
type BangBang struct {
	params BangBangParams
	duty   float64
}

// NewBangBang returns a controller in the reset state.
func NewBangBang(params BangBangParams) *BangBang {
	return &BangBang{params: params}
}

// Reset clears the held duty.
func (c *BangBang) Reset() { c.duty = 0 }

// Step computes the next heater duty.
func (c *BangBang) Step(in Inputs) Outputs {
	err := in.DetuneNm - in.DetuneTargetNm

	switch {
	case !in.Locked:
		c.duty += c.params.StepSize + c.params.UnlockBoost
	case err < -c.params.DetuneDeadbandNm:
		c.duty += c.params.StepSize
	case err > c.params.DetuneDeadbandNm:
		c.duty -= c.params.StepSize
	}

	c.duty = clampDuty(c.duty, c.params.MinDuty, c.params.MaxDuty)
	return Outputs{HeaterDuty: c.duty, Error: err}
}
