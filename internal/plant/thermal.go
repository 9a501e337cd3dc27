// Package plant holds the continuous-domain models: a first-order thermal
// RC network, a thermo-optic ring resonator, and the impairment curve that
// maps detuning to a CRC failure probability. All step functions are pure;
// the Runner owns the only mutable state.
package plant

// ThermalParams describes the RC network between the power sources and
// ambient.
type ThermalParams struct {
	AmbientC     float64 `yaml:"ambient_c"`
	RThCPerW     float64 `yaml:"r_th_c_per_w"`
	CThJPerC     float64 `yaml:"c_th_j_per_c"`
	HeaterWMax   float64 `yaml:"heater_w_max"`
	WorkloadWMax float64 `yaml:"workload_w_max"`
}

// ThermalState is the single integrator of the plant.
type ThermalState struct {
	TempC float64
}

// StepThermal advances the temperature by dt seconds of Euler integration:
//
//	dT/dt = (P_in * R_th - (T - T_amb)) / (R_th * C_th)
//
// Euler is sufficient here; the thermal time constant is orders of
// magnitude above the timestep. Duty inputs are clamped to [0,1].
func StepThermal(s ThermalState, dtS, heaterDuty, workloadFrac float64, p ThermalParams) ThermalState {
	heaterDuty = clamp01(heaterDuty)
	workloadFrac = clamp01(workloadFrac)

	pIn := heaterDuty*p.HeaterWMax + workloadFrac*p.WorkloadWMax
	dTdt := (pIn*p.RThCPerW - (s.TempC - p.AmbientC)) / (p.RThCPerW * p.CThJPerC)
	return ThermalState{TempC: s.TempC + dtS*dTdt}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
