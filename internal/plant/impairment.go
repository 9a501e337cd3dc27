package plant

import "math"

// ImpairmentParams shapes the detuning-to-failure-probability curve.
type ImpairmentParams struct {
	Detune50Nm    float64 `yaml:"detune_50_nm"`
	DetuneFloorNm float64 `yaml:"detune_floor_nm"`
	DetuneCeilNm  float64 `yaml:"detune_ceil_nm"`
}

// EvalImpairment maps detuning magnitude to a CRC failure probability.
// Unlocked always yields 1.0. Between the floor and ceiling the curve is a
// cubic smoothstep rescaled so the probability passes through 0.5 at
// Detune50Nm.
func EvalImpairment(detuneNm float64, locked bool, p ImpairmentParams) float64 {
	if !locked {
		return 1.0
	}
	abs := math.Abs(detuneNm)
	if abs <= p.DetuneFloorNm {
		return 0.0
	}
	if abs >= p.DetuneCeilNm {
		return 1.0
	}

	span := p.DetuneCeilNm - p.DetuneFloorNm
	x := (abs - p.DetuneFloorNm) / span
	x50 := (p.Detune50Nm - p.DetuneFloorNm) / span
	x50 = clamp01(x50)

	// Piecewise rescale so x50 lands on 0.5 before the smoothstep.
	xn := x
	if x50 > 0 && x50 < 1 {
		if x <= x50 {
			xn = 0.5 * (x / x50)
		} else {
			xn = 0.5 + 0.5*((x-x50)/(1.0-x50))
		}
	}

	s := xn * xn * (3.0 - 2.0*xn)
	return clamp01(s)
}
