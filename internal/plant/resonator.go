package plant

import "math"

// ResonatorParams describes the thermo-optic wavelength shift and lock
// window of the ring.
type ResonatorParams struct {
	Lambda0Nm         float64 `yaml:"lambda0_nm"`
	ThermoOpticNmPerC float64 `yaml:"thermo_optic_nm_per_c"`
	LockWindowNm      float64 `yaml:"lock_window_nm"`
	TargetLambdaNm    float64 `yaml:"target_lambda_nm"`
	AmbientC          float64 `yaml:"ambient_c"`
}

// ResonatorOutputs is the optical state at one temperature.
type ResonatorOutputs struct {
	ResonanceNm float64
	DetuneNm    float64
	Locked      bool
}

// EvalResonator computes the resonance shift at temp and whether the laser
// is still within the lock window.
//
//	lambda_res = lambda0 + alpha * (T - T_ambient)
//	detune     = target - lambda_res (signed)
//	locked     = |detune| <= lock window
func EvalResonator(tempC float64, p ResonatorParams) ResonatorOutputs {
	resonance := p.Lambda0Nm + p.ThermoOpticNmPerC*(tempC-p.AmbientC)
	detune := p.TargetLambdaNm - resonance
	return ResonatorOutputs{
		ResonanceNm: resonance,
		DetuneNm:    detune,
		Locked:      math.Abs(detune) <= p.LockWindowNm,
	}
}
