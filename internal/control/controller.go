// Package control holds the feedback controllers that close the thermal
// loop. Controllers are stateful but deterministic and resettable; they
// know nothing about cycles, chunks, or kernel mechanics.
package control

// Inputs are the observations and setpoint handed to a controller each
// cycle.
type Inputs struct {
	DtS            float64
	TempC          float64
	DetuneNm       float64
	Locked         bool
	CrcFailProb    float64
	DetuneTargetNm float64
}

// Outputs is the actuation command. HeaterDuty is always in [0,1].
type Outputs struct {
	HeaterDuty float64
	Error      float64
}

// Controller maps observations to a heater duty command.
type Controller interface {
	Reset()
	Step(in Inputs) Outputs
}

func clampDuty(d, lo, hi float64) float64 {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
