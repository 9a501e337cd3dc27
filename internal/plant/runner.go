package plant

// Inputs is the per-cycle drive record. FrameValid reports whether a frame
// is present this cycle; schedules that model traffic gaps clear it.
type Inputs struct {
	HeaterDuty   float64
	WorkloadFrac float64
	DtS          float64
	FrameValid   bool
}

// Outputs is the combined plant state after one step.
type Outputs struct {
	TempC       float64
	ResonanceNm float64
	DetuneNm    float64
	Locked      bool
	CrcFailProb float64
}

// Params bundles the full plant parameter set.
type Params struct {
	Thermal    ThermalParams    `yaml:"thermal"`
	Resonator  ResonatorParams  `yaml:"resonator"`
	Impairment ImpairmentParams `yaml:"impairment"`
}

// DefaultParams are the photonic-resonator defaults used by the stock
// scenarios.
func DefaultParams() Params {
	return Params{
		Thermal: ThermalParams{
			AmbientC:     25.0,
			RThCPerW:     10.0,
			CThJPerC:     0.1,
			HeaterWMax:   1.0,
			WorkloadWMax: 0.5,
		},
		Resonator: ResonatorParams{
			Lambda0Nm:         1550.0,
			ThermoOpticNmPerC: 0.1,
			LockWindowNm:      0.5,
			TargetLambdaNm:    1550.0,
			AmbientC:          25.0,
		},
		Impairment: ImpairmentParams{
			Detune50Nm:    0.3,
			DetuneFloorNm: 0.0,
			DetuneCeilNm:  1.0,
		},
	}
}

// Runner owns the thermal state and evaluates the model chain
// thermal -> resonator -> impairment once per cycle. The kernel never
// touches the state directly.
type Runner struct {
	params Params
	state  ThermalState
}

// NewRunner starts the plant at the given temperature.
func NewRunner(params Params, initialTempC float64) *Runner {
	return &Runner{params: params, state: ThermalState{TempC: initialTempC}}
}

// Step advances the plant one timestep and returns the combined outputs.
func (r *Runner) Step(in Inputs) Outputs {
	r.state = StepThermal(r.state, in.DtS, in.HeaterDuty, in.WorkloadFrac, r.params.Thermal)
	res := EvalResonator(r.state.TempC, r.params.Resonator)
	prob := EvalImpairment(res.DetuneNm, res.Locked, r.params.Impairment)
	return Outputs{
		TempC:       r.state.TempC,
		ResonanceNm: res.ResonanceNm,
		DetuneNm:    res.DetuneNm,
		Locked:      res.Locked,
		CrcFailProb: prob,
	}
}

// ThermalState exposes the integrator for inspection in tests.
func (r *Runner) ThermalState() ThermalState { return r.state }
