package lnhrdac2

// RampState is the run state of a ramp/step generator.
type RampState int

const (
	RampIdle RampState = iota
	RampRampingUp
	RampRampingDown
	RampHolding
)

func (s RampState) String() string {
	switch s {
	case RampIdle:
		return "idle"
	case RampRampingUp:
		return "ramping up"
	case RampRampingDown:
		return "ramping down"
	case RampHolding:
		return "holding"
	default:
		return "unknown"
	}
}

// RampShape values.
const (
	RampShapeSawtooth = 0 // ramp up only
	RampShapeTriangle = 1 // ramp up and down
)

// Ramp is one of the four ramp/step generators.  Configuration setters
// honor the advisory lock a running 2D scan places on its generators;
// telemetry reads are always allowed.
type Ramp struct {
	ctl   *Controller
	locks *lockTable

	ID Designator
}

func newRamp(ctl *Controller, locks *lockTable, id Designator) *Ramp {
	return &Ramp{ctl: ctl, locks: locks, ID: id}
}

func (r *Ramp) guard() error {
	return r.locks.check(r.ID, "ramp generator "+string(r.ID))
}

// Start starts the generator.
func (r *Ramp) Start() error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.ctl.SetRampMode(r.ID, "START")
}

// Stop stops the generator.
func (r *Ramp) Stop() error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.ctl.SetRampMode(r.ID, "STOP")
}

// Hold pauses the generator at its present step; Start resumes.
func (r *Ramp) Hold() error {
	if err := r.guard(); err != nil {
		return err
	}
	return r.ctl.SetRampMode(r.ID, "HOLD")
}

// State reads the run state.
func (r *Ramp) State() (RampState, error) {
	return r.ctl.RampState(r.ID)
}

// CyclesDone reads completed cycles since the last start.
func (r *Ramp) CyclesDone() (int, error) {
	return r.ctl.RampCyclesDone(r.ID)
}

// StepsDone reads completed steps since the last start.
func (r *Ramp) StepsDone() (int, error) {
	return r.ctl.RampStepsDone(r.ID)
}

// StepSize reads the device-computed volts per step.
func (r *Ramp) StepSize() (float64, error) {
	return r.ctl.RampStepSize(r.ID)
}

// CycleSteps reads the device-computed steps per cycle.
func (r *Ramp) CycleSteps() (int, error) {
	return r.ctl.RampCycleSteps(r.ID)
}

// Channel reads the bound DAC channel.
func (r *Ramp) Channel() (int, error) {
	return r.ctl.RampChannel(r.ID)
}

// SetChannel binds a DAC channel and verifies the device accepts it as
// available.
func (r *Ramp) SetChannel(channel int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if err := r.ctl.SetRampChannel(r.ID, channel); err != nil {
		return err
	}
	avail, err := r.ctl.RampChannelAvailable(r.ID)
	if err != nil {
		return err
	}
	if !avail {
		return ChannelUnavailableError{Axis: "ramp " + string(r.ID), Channel: channel}
	}
	return nil
}

// StartVoltage reads the ramp starting voltage.
func (r *Ramp) StartVoltage() (float64, error) {
	return r.ctl.RampStartVoltage(r.ID)
}

// SetStartVoltage sets the ramp starting voltage.
func (r *Ramp) SetStartVoltage(v float64) error {
	if err := r.guard(); err != nil {
		return err
	}
	if v < -10.0 || v > 10.0 {
		return RangeError{Field: "ramp start voltage", Value: v, Min: -10.0, Max: 10.0}
	}
	return r.ctl.SetRampStartVoltage(r.ID, v)
}

// PeakVoltage reads the ramp stop/peak voltage.
func (r *Ramp) PeakVoltage() (float64, error) {
	return r.ctl.RampPeakVoltage(r.ID)
}

// SetPeakVoltage sets the ramp stop/peak voltage.
func (r *Ramp) SetPeakVoltage(v float64) error {
	if err := r.guard(); err != nil {
		return err
	}
	if v < -10.0 || v > 10.0 {
		return RangeError{Field: "ramp peak voltage", Value: v, Min: -10.0, Max: 10.0}
	}
	return r.ctl.SetRampPeakVoltage(r.ID, v)
}

// Duration reads the ramp time in seconds.
func (r *Ramp) Duration() (float64, error) {
	return r.ctl.RampDuration(r.ID)
}

// SetDuration sets the ramp time in seconds.  The generator updates on
// a 5 ms tick, so the useful resolution is 5 ms.
func (r *Ramp) SetDuration(seconds float64) error {
	if err := r.guard(); err != nil {
		return err
	}
	if seconds < 0.05 || seconds > 1e6 {
		return RangeError{Field: "ramp duration", Value: seconds, Min: 0.05, Max: 1e6}
	}
	return r.ctl.SetRampDuration(r.ID, seconds)
}

// Shape reads RampShapeSawtooth or RampShapeTriangle.
func (r *Ramp) Shape() (int, error) {
	return r.ctl.RampShape(r.ID)
}

// SetShape sets RampShapeSawtooth or RampShapeTriangle.
func (r *Ramp) SetShape(shape int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if shape != RampShapeSawtooth && shape != RampShapeTriangle {
		return ChoiceError{Field: "ramp shape", Value: itoa(shape), Valid: []string{"0", "1"}}
	}
	return r.ctl.SetRampShape(r.ID, shape)
}

// Cycles reads the programmed cycle count; 0 means infinite.
func (r *Ramp) Cycles() (int, error) {
	return r.ctl.RampCycles(r.ID)
}

// SetCycles programs the cycle count; 0 means infinite.
func (r *Ramp) SetCycles(cycles int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if cycles < 0 {
		return RangeError{Field: "ramp cycles", Value: float64(cycles), Min: 0, Max: 1e9}
	}
	return r.ctl.SetRampCycles(r.ID, cycles)
}

// StepMode reads 0 (time driven) or 1 (stepped by the associated AWG).
func (r *Ramp) StepMode() (int, error) {
	return r.ctl.RampStepMode(r.ID)
}

// SetStepMode selects time driven (0) or AWG stepped (1) updates.
func (r *Ramp) SetStepMode(mode int) error {
	if err := r.guard(); err != nil {
		return err
	}
	if mode != 0 && mode != 1 {
		return ChoiceError{Field: "ramp step mode", Value: itoa(mode), Valid: []string{"0", "1"}}
	}
	return r.ctl.SetRampStepMode(r.ID, mode)
}
