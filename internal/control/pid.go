package control

// PIDParams tunes the incremental PID controller.
type PIDParams struct {
	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	MinDuty       float64 `yaml:"min_duty"`
	MaxDuty       float64 `yaml:"max_duty"`
	IntegratorMin float64 `yaml:"integrator_min"`
	IntegratorMax float64 `yaml:"integrator_max"`
	UnlockBoost   float64 `yaml:"unlock_boost"`
}

// DefaultPIDParams are tuned for the stock plant defaults.
func DefaultPIDParams() PIDParams {
	return PIDParams{
		Kp:            0.05,
		Ki:            0.001,
		Kd:            0.01,
		MinDuty:       0.0,
		MaxDuty:       1.0,
		IntegratorMin: -10.0,
		IntegratorMax: 10.0,
		UnlockBoost:   0.1,
	}
}

// PID is an incremental PID controller for detune regulation:
//
//	delta = kp*e + ki*integral(e) + kd*de/dt
//	u     = u_prev + delta
//
// The incremental form holds its operating point at steady state, so it
// tracks a setpoint under sustained disturbances such as workload power.
// The integrator is clamped for anti-windup, and an unlock boost pushes
// the duty in the error-correcting direction when lock is lost.
type PID struct {
	params     PIDParams
	integrator float64
	lastError  float64
	duty       float64
}

// NewPID returns a controller in the reset state.
func NewPID(params PIDParams) *PID {
	return &PID{params: params}
}

// Reset clears the integrator, error history, and duty.
func (c *PID) Reset() {
	c.integrator = 0
	c.lastError = 0
	c.duty = 0
}

// Step computes the next heater duty.
func (c *PID) Step(in Inputs) Outputs {
	err := in.DetuneNm - in.DetuneTargetNm

	pTerm := c.params.Kp * err

	c.integrator += err * in.DtS
	c.integrator = clampDuty(c.integrator, c.params.IntegratorMin, c.params.IntegratorMax)
	iTerm := c.params.Ki * c.integrator

	var dErr float64
	if in.DtS > 0 {
		dErr = (err - c.lastError) / in.DtS
	}
	dTerm := c.params.Kd * dErr

	c.duty += pTerm + iTerm + dTerm

	if !in.Locked {
		boost := c.params.UnlockBoost
		if err < 0 {
			boost = -boost
		}
		c.duty += boost
	}

	c.duty = clampDuty(c.duty, c.params.MinDuty, c.params.MaxDuty)
	c.lastError = err

	return Outputs{HeaterDuty: c.duty, Error: err}
}
