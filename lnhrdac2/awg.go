package lnhrdac2

import "strconv"

// TriggerMode selects how the external trigger input drives an AWG.
type TriggerMode int

const (
	TriggerDisabled   TriggerMode = iota // free running
	TriggerStartOnly                     // rising edge starts
	TriggerStartStop                     // edges start and stop
	TriggerSingleStep                    // one sample per edge
)

func (m TriggerMode) String() string {
	switch m {
	case TriggerDisabled:
		return "disabled"
	case TriggerStartOnly:
		return "start only"
	case TriggerStartStop:
		return "start stop"
	case TriggerSingleStep:
		return "single step"
	default:
		return "unknown"
	}
}

func (m TriggerMode) valid() bool {
	return m >= TriggerDisabled && m <= TriggerSingleStep
}

// AWG is one of the four arbitrary waveform generators.  Each has a
// dedicated wave memory for staging waveforms; SetWaveform runs the
// whole upload from host samples to playable AWG memory.
//
// Configuration setters honor the advisory lock a running 2D scan
// places on its generators; reads are always allowed.
type AWG struct {
	ctl   *Controller
	locks *lockTable

	ID Designator

	// Mem is the staging buffer committed into this AWG's play memory.
	Mem *WaveMemory
}

func newAWG(ctl *Controller, locks *lockTable, id Designator) *AWG {
	return &AWG{ctl: ctl, locks: locks, ID: id, Mem: newWaveMemory(ctl, id)}
}

func (a *AWG) guard() error {
	return a.locks.check(a.ID, "AWG "+string(a.ID))
}

// Start starts waveform playback.
func (a *AWG) Start() error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.ctl.StartAWG(a.ID)
}

// Stop stops waveform playback.
func (a *AWG) Stop() error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.ctl.StopAWG(a.ID)
}

// Running reads whether the AWG is playing.
func (a *AWG) Running() (bool, error) {
	return a.ctl.AWGRunning(a.ID)
}

// CyclesDone reads completed cycles since the last start.
func (a *AWG) CyclesDone() (int, error) {
	return a.ctl.AWGCyclesDone(a.ID)
}

// CycleDuration reads the device-computed duration of one cycle in
// seconds.
func (a *AWG) CycleDuration() (float64, error) {
	return a.ctl.AWGDuration(a.ID)
}

// Channel reads the bound output channel.
func (a *AWG) Channel() (int, error) {
	return a.ctl.AWGChannel(a.ID)
}

// SetChannel binds an output channel and verifies the device accepts
// it as available.
func (a *AWG) SetChannel(channel int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.ctl.SetAWGChannel(a.ID, channel); err != nil {
		return err
	}
	avail, err := a.ctl.AWGChannelAvailable(a.ID)
	if err != nil {
		return err
	}
	if !avail {
		return ChannelUnavailableError{Axis: "AWG " + string(a.ID), Channel: channel}
	}
	return nil
}

// MemorySize reads the play-memory size.
func (a *AWG) MemorySize() (int, error) {
	return a.ctl.AWGMemorySize(a.ID)
}

// SetMemorySize sets the play-memory size (2..34000).
func (a *AWG) SetMemorySize(size int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if size < 2 || size > MaxMemorySize {
		return RangeError{Field: "AWG memory size", Value: float64(size), Min: 2, Max: MaxMemorySize}
	}
	return a.ctl.SetAWGMemorySize(a.ID, size)
}

// Cycles reads the programmed cycle count; 0 means infinite.
func (a *AWG) Cycles() (int, error) {
	return a.ctl.AWGCycles(a.ID)
}

// SetCycles programs the cycle count; 0 means infinite.
func (a *AWG) SetCycles(cycles int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if cycles < 0 {
		return RangeError{Field: "AWG cycles", Value: float64(cycles), Min: 0, Max: 1e9}
	}
	return a.ctl.SetAWGCycles(a.ID, cycles)
}

// TriggerMode reads the external trigger mode.
func (a *AWG) TriggerMode() (TriggerMode, error) {
	return a.ctl.AWGTriggerMode(a.ID)
}

// SetTriggerMode sets the external trigger mode.
func (a *AWG) SetTriggerMode(mode TriggerMode) error {
	if err := a.guard(); err != nil {
		return err
	}
	if !mode.valid() {
		return ChoiceError{Field: "trigger mode", Value: strconv.Itoa(int(mode)),
			Valid: []string{"0", "1", "2", "3"}}
	}
	return a.ctl.SetAWGTriggerMode(a.ID, mode)
}

// ClockPeriod reads the sampling clock period in microseconds.  The
// clock belongs to the board, so the sibling AWG shares it.
func (a *AWG) ClockPeriod() (int, error) {
	return a.ctl.AWGClockPeriod(a.ID.Board())
}

// SetClockPeriod sets the board sampling clock period in microseconds,
// retiming the sibling AWG as well.
func (a *AWG) SetClockPeriod(periodMicros int) error {
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.locks.check(a.ID.Sibling(), "AWG "+string(a.ID.Sibling())); err != nil {
		return err
	}
	if periodMicros < 10 || periodMicros > 4000000000 {
		return RangeError{Field: "clock period", Value: float64(periodMicros),
			Min: 10, Max: 4000000000, Hint: "microseconds"}
	}
	return a.ctl.SetAWGClockPeriod(a.ID.Board(), periodMicros)
}

// SetWaveform uploads host samples into this AWG's play memory: the
// wave memory is rewritten and verified, then committed device-side
// with a bounded busy-wait.  Committing can disturb the shared board
// clock, so the clock period is snapshotted before the commit and put
// back if the commit changed it.
func (a *AWG) SetWaveform(voltages []float64) error {
	if err := a.guard(); err != nil {
		return err
	}
	if err := a.Mem.Write(voltages); err != nil {
		return err
	}
	period, err := a.ctl.AWGClockPeriod(a.ID.Board())
	if err != nil {
		return err
	}
	if err := a.Mem.CommitToAWG(); err != nil {
		return err
	}
	after, err := a.ctl.AWGClockPeriod(a.ID.Board())
	if err != nil {
		return err
	}
	if after == period {
		return nil
	}
	return a.ctl.SetAWGClockPeriod(a.ID.Board(), period)
}

// Waveform reads back the staged wave memory in volts.  It reflects
// the staging buffer, not the play memory, so it matches the last
// SetWaveform or SWG apply.
func (a *AWG) Waveform() ([]float64, error) {
	return a.Mem.Read()
}

// AutoStart reads whether the AWG restarts automatically after its
// associated step generator advances.
func (a *AWG) AutoStart() (bool, error) {
	i, err := a.ctl.AWGStartMode(a.ID)
	return i != 0, err
}

// SetAutoStart selects automatic (true) or manual (false) restart.
func (a *AWG) SetAutoStart(auto bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.ctl.SetAWGStartMode(a.ID, boolToInt(auto))
}

// ReloadOnRestart reads whether the play memory is refreshed from the
// wave memory before each restart.
func (a *AWG) ReloadOnRestart() (bool, error) {
	i, err := a.ctl.AWGReloadMode(a.ID)
	return i != 0, err
}

// SetReloadOnRestart enables or disables the refresh.  Reloading is
// what applies polynomials and adaptive shifts.
func (a *AWG) SetReloadOnRestart(reload bool) error {
	if err := a.guard(); err != nil {
		return err
	}
	return a.ctl.SetAWGReloadMode(a.ID, boolToInt(reload))
}

// SetPolynomial programs the reload polynomial of this AWG's memory;
// coefficients in ascending order of power.
func (a *AWG) SetPolynomial(coefficients []float64) error {
	if err := a.guard(); err != nil {
		return err
	}
	if len(coefficients) == 0 {
		return ChoiceError{Field: "polynomial", Value: "empty",
			Valid: []string{"at least one coefficient"}}
	}
	return a.ctl.SetPolynomial(a.ID, coefficients)
}

// Polynomial reads back the reload polynomial coefficients.
func (a *AWG) Polynomial() ([]float64, error) {
	return a.ctl.Polynomial(a.ID)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
