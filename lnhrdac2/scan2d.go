package lnhrdac2

import (
	"log"
	"math"
	"sync"
)

// ScanState is the lifecycle state of the 2D scan coordinator.
type ScanState int

const (
	ScanUnconfigured ScanState = iota
	ScanConfigured
	ScanRunning
)

func (s ScanState) String() string {
	switch s {
	case ScanUnconfigured:
		return "unconfigured"
	case ScanConfigured:
		return "configured"
	case ScanRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Trigger modes of the 2D scan.
const (
	ScanTriggerDisable  = "disable"   // free running, as fast as possible
	ScanTriggerLineIn   = "line in"   // external trigger starts each x sweep
	ScanTriggerLineOut  = "line out"  // sync pulse out at each x sweep
	ScanTriggerPointOut = "point out" // trigger pulse out at each x step
)

var scanTriggers = []string{ScanTriggerDisable, ScanTriggerLineIn, ScanTriggerLineOut, ScanTriggerPointOut}

// Scan2DConfig describes an adaptive fast 2D scan.  The x axis is
// stepped by a ramp generator, the y axis is swept by an AWG playing a
// staircase waveform once per x step.
type Scan2DConfig struct {
	XChannel         int     // 1 .. 12
	XStart           float64 // V
	XStop            float64 // V
	XSteps           int     // 10 .. 16777216
	YChannel         int     // 1 .. 12
	YStart           float64 // V
	YStop            float64 // V
	YSteps           int     // 1 .. 16777216
	AcquisitionDelay float64 // s per y step, 1e-5 .. 4000
	AdaptiveShift    float64 // V added to the y staircase after each x step
}

// DefaultScan2DConfig returns a 10 x 10 point scan over 0..1 V on
// channels 1 and 2.
func DefaultScan2DConfig() Scan2DConfig {
	return Scan2DConfig{
		XChannel: 1, XStart: 0.0, XStop: 1.0, XSteps: 10,
		YChannel: 2, YStart: 0.0, YStop: 1.0, YSteps: 10,
		AcquisitionDelay: 0.01}
}

// validate checks the whole configuration numerically before anything
// is sent to the device, so a bad config can never leave the hardware
// half configured.
func (c Scan2DConfig) validate() error {
	if c.XChannel < 1 || c.XChannel > 12 {
		return RangeError{Field: "x channel", Value: float64(c.XChannel), Min: 1, Max: 12}
	}
	if c.YChannel < 1 || c.YChannel > 12 {
		return RangeError{Field: "y channel", Value: float64(c.YChannel), Min: 1, Max: 12}
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"x start voltage", c.XStart},
		{"x stop voltage", c.XStop},
		{"y start voltage", c.YStart},
		{"y stop voltage", c.YStop},
		{"adaptive shift", c.AdaptiveShift},
	} {
		if v.val < -10.0 || v.val > 10.0 {
			return RangeError{Field: v.name, Value: v.val, Min: -10.0, Max: 10.0}
		}
	}
	if c.XSteps < 10 || c.XSteps > 16777216 {
		return RangeError{Field: "x steps", Value: float64(c.XSteps), Min: 10, Max: 16777216}
	}
	if c.YSteps < 1 || c.YSteps > 16777216 {
		return RangeError{Field: "y steps", Value: float64(c.YSteps), Min: 1, Max: 16777216}
	}
	if c.AcquisitionDelay < 1e-5 || c.AcquisitionDelay > 4000.0 {
		return RangeError{Field: "acquisition delay", Value: c.AcquisitionDelay,
			Min: 1e-5, Max: 4000.0, Hint: "seconds"}
	}
	// the y staircase plus its return sample must fit one AWG memory
	if c.YSteps+2 > MaxMemorySize {
		return RangeError{Field: "y steps", Value: float64(c.YSteps), Min: 1,
			Max: MaxMemorySize - 2, Hint: "y waveform must fit the AWG memory"}
	}
	sweep := float64(c.YSteps) * c.AcquisitionDelay
	if sweep < 0.006 {
		return RangeError{Field: "y sweep period", Value: sweep, Min: 0.006, Max: math.Inf(1),
			Hint: "increase y steps or acquisition delay"}
	}
	return nil
}

// scanLockOwner names the coordinator in LockedError messages.
const scanLockOwner = "the 2D scan"

/*Scan2D coordinates an adaptive fast 2D scan.

It commandeers one AWG/ramp pair: the ramp steps the x channel as a
one-cycle sawtooth while the AWG replays the y staircase once per step.
Because the two generators of a board share a sampling clock, the whole
board is reserved, and an advisory lock keeps direct AWG and ramp
access from disturbing a configured scan.  The scan itself talks to the
controller directly, underneath the locks.

The zero value is not usable; Device wires one up.
*/
type Scan2D struct {
	ctl   *Controller
	locks *lockTable
	swg   *SWG

	// Logger receives the cabling hints for the trigger modes.
	Logger *log.Logger

	mu      sync.Mutex
	state   ScanState
	cfg     Scan2DConfig
	xy      Designator // generator pair driving the scan
	trig    Designator // generator producing the point-out trigger, "" if none
	trigMod string
}

func newScan2D(ctl *Controller, locks *lockTable, swg *SWG) *Scan2D {
	return &Scan2D{ctl: ctl, locks: locks, swg: swg,
		Logger: log.Default(), trigMod: ScanTriggerDisable}
}

// State reads the coordinator state.
func (s *Scan2D) State() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the active configuration; only meaningful once
// configured.
func (s *Scan2D) Config() Scan2DConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// pickIdlePair returns the first designator of the candidates whose
// AWG and ramp generator are both idle.
func (s *Scan2D) pickIdlePair(candidates []Designator) (Designator, error) {
	for _, d := range candidates {
		running, err := s.ctl.AWGRunning(d)
		if err != nil {
			return "", err
		}
		if running {
			continue
		}
		state, err := s.ctl.RampState(d)
		if err != nil {
			return "", err
		}
		if state == RampIdle {
			return d, nil
		}
	}
	return "", ResourceExhaustedError{
		Required: "an idle AWG and ramp generator pair among " + designatorList(candidates)}
}

// ensureIdle verifies with the device that neither the AWG nor the
// ramp generator of d is running.
func (s *Scan2D) ensureIdle(d Designator) error {
	running, err := s.ctl.AWGRunning(d)
	if err != nil {
		return err
	}
	if !running {
		state, err := s.ctl.RampState(d)
		if err != nil {
			return err
		}
		if state == RampIdle {
			return nil
		}
	}
	return LockedError{Resource: "scan trigger", Owner: "running generator " + string(d)}
}

func designatorList(ds []Designator) string {
	out := ""
	for i, d := range ds {
		if i > 0 {
			out += ", "
		}
		out += string(d)
	}
	return out
}

// Configure validates cfg and programs the x ramp and y staircase onto
// the first idle generator pair of board AB.  On success the board is
// locked until the scan is disabled.
func (s *Scan2D) Configure(cfg Scan2DConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScanRunning {
		return LockedError{Resource: "scan configuration", Owner: "the running scan"}
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	xy, err := s.pickIdlePair([]Designator{GenA, GenB})
	if err != nil {
		return err
	}

	// the previous configuration, if any, is void from here on; the
	// state is reset with it so a failure below cannot leave a stale
	// configuration claiming generators it no longer locks
	s.unlockAll()
	s.reset()

	// y axis output
	if err := s.ctl.SetAWGChannel(xy, cfg.YChannel); err != nil {
		return err
	}
	avail, err := s.ctl.AWGChannelAvailable(xy)
	if err != nil {
		return err
	}
	if !avail {
		return ChannelUnavailableError{Axis: "y-axis", Channel: cfg.YChannel}
	}

	// x axis output
	if err := s.ctl.SetRampChannel(xy, cfg.XChannel); err != nil {
		return err
	}
	avail, err = s.ctl.RampChannelAvailable(xy)
	if err != nil {
		return err
	}
	if !avail {
		return ChannelUnavailableError{Axis: "x-axis", Channel: cfg.XChannel}
	}

	// x axis: one sawtooth cycle, advanced one step per y sweep
	xRampTime := 0.005 * float64(cfg.XSteps+1)
	if err := s.ctl.SetRampStartVoltage(xy, cfg.XStart); err != nil {
		return err
	}
	if err := s.ctl.SetRampPeakVoltage(xy, cfg.XStop); err != nil {
		return err
	}
	if err := s.ctl.SetRampDuration(xy, xRampTime); err != nil {
		return err
	}
	if err := s.ctl.SetRampShape(xy, RampShapeSawtooth); err != nil {
		return err
	}
	if err := s.ctl.SetRampCycles(xy, 1); err != nil {
		return err
	}
	if err := s.ctl.SetRampStepMode(xy, 1); err != nil {
		return err
	}

	// y axis: staircase from start to stop plus the return sample
	yStep := (cfg.YStop - cfg.YStart) / float64(cfg.YSteps)
	waveform := make([]float64, 0, cfg.YSteps+2)
	for i := 0; i <= cfg.YSteps; i++ {
		waveform = append(waveform, round6(cfg.YStart+float64(i)*yStep))
	}
	waveform = append(waveform, cfg.YStart)

	if err := s.ctl.SetAWGTriggerMode(xy, TriggerDisabled); err != nil {
		return err
	}
	if err := s.ctl.SetAWGCycles(xy, 1); err != nil {
		return err
	}
	if err := s.ctl.SetAWGMemorySize(xy, len(waveform)); err != nil {
		return err
	}
	mem := newWaveMemory(s.ctl, xy)
	if err := mem.Write(waveform); err != nil {
		return err
	}
	if err := mem.CommitToAWG(); err != nil {
		return err
	}
	// the commit can disturb the shared board clock, set it last
	period := int(math.Round(cfg.AcquisitionDelay * 1e6))
	if err := s.ctl.SetAWGClockPeriod(xy.Board(), period); err != nil {
		return err
	}

	// adaptive shift rides on the reload polynomial
	adaptive := cfg.AdaptiveShift != 0.0
	if err := s.ctl.SetAWGStartMode(xy, 1); err != nil {
		return err
	}
	if err := s.ctl.SetAWGReloadMode(xy, boolToInt(adaptive)); err != nil {
		return err
	}
	if err := s.ctl.SetApplyPolynomial(xy, boolToInt(adaptive)); err != nil {
		return err
	}
	if adaptive {
		if err := s.ctl.SetAdaptiveShiftVoltage(xy, cfg.AdaptiveShift); err != nil {
			return err
		}
	}

	s.locks.lock(xy, scanLockOwner)
	s.locks.lock(xy.Sibling(), scanLockOwner)

	s.xy = xy
	s.cfg = cfg
	s.trigMod = ScanTriggerDisable
	s.state = ScanConfigured
	return nil
}

// SetTrigger selects how x sweeps are synchronized with the outside
// world.  Point-out mode additionally reserves a generator pair of
// board CD to emit one trigger pulse per y step; it requires a cable
// from Sync Out of the scan AWG to Trig In of the trigger AWG.
func (s *Scan2D) SetTrigger(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !contains(scanTriggers, mode) {
		return ChoiceError{Field: "trigger mode", Value: mode, Valid: scanTriggers}
	}
	if s.state == ScanUnconfigured {
		return LockedError{Resource: "scan trigger", Owner: "nothing, configure the scan first"}
	}
	if s.state == ScanRunning {
		return LockedError{Resource: "scan trigger", Owner: "the running scan"}
	}
	// the locks are only advisory; ask the device whether anything
	// reserved is actually running before rewiring, a generator started
	// through the raw controller would otherwise go unnoticed
	if err := s.ensureIdle(s.xy); err != nil {
		return err
	}
	if s.trig != "" {
		if err := s.ensureIdle(s.trig); err != nil {
			return err
		}
	}

	switch mode {
	case ScanTriggerDisable:
		s.releaseTrigger()
		if err := s.ctl.SetAWGTriggerMode(s.xy, TriggerDisabled); err != nil {
			return err
		}
		if err := s.ctl.SetAWGStartMode(s.xy, 1); err != nil {
			return err
		}
	case ScanTriggerLineIn:
		s.releaseTrigger()
		if err := s.ctl.SetAWGTriggerMode(s.xy, TriggerStartOnly); err != nil {
			return err
		}
		if err := s.ctl.SetAWGStartMode(s.xy, 0); err != nil {
			return err
		}
		if s.Logger != nil {
			s.Logger.Printf("scan: line-in trigger uses the Trig In AWG %s input", s.xy)
		}
	case ScanTriggerLineOut:
		s.releaseTrigger()
		if err := s.ctl.SetAWGTriggerMode(s.xy, TriggerDisabled); err != nil {
			return err
		}
		if err := s.ctl.SetAWGStartMode(s.xy, 1); err != nil {
			return err
		}
		if s.Logger != nil {
			s.Logger.Printf("scan: line-out trigger uses the Sync Out AWG %s output", s.xy)
		}
	case ScanTriggerPointOut:
		if err := s.configurePointOut(); err != nil {
			return err
		}
	}
	s.trigMod = mode
	return nil
}

// configurePointOut reserves a generator of board CD and programs it
// with a rectangle wave emitting one edge per y step.
func (s *Scan2D) configurePointOut() error {
	trig, err := s.pickIdlePair([]Designator{GenC, GenD})
	if err != nil {
		return err
	}
	trigCfg := SWGConfig{
		Shape:     "rectangle",
		Frequency: 1.0 / s.cfg.AcquisitionDelay,
		Amplitude: 2.5,
		Offset:    2.5,
	}
	if err := s.swg.Configure(trigCfg); err != nil {
		return err
	}
	if err := s.applySWGTo(trig); err != nil {
		return err
	}
	if err := s.ctl.SetAWGCycles(trig, s.cfg.YSteps); err != nil {
		return err
	}
	if err := s.ctl.SetAWGTriggerMode(trig, TriggerStartOnly); err != nil {
		return err
	}
	s.locks.lock(trig, scanLockOwner)
	s.locks.lock(trig.Sibling(), scanLockOwner)
	s.trig = trig
	if s.Logger != nil {
		s.Logger.Printf("scan: point-out trigger requires a cable from Sync Out AWG %s to Trig In AWG %s", s.xy, trig)
	}
	return nil
}

// applySWGTo mirrors SWG.Apply without the advisory lock check; the
// coordinator works underneath its own locks.
func (s *Scan2D) applySWGTo(d Designator) error {
	if err := s.ctl.SetSWGTargetMemory(d); err != nil {
		return err
	}
	siblingSize, err := s.ctl.AWGMemorySize(d.Sibling())
	if err != nil {
		return err
	}
	if err := s.ctl.SetSWGAdaptClock(siblingSize <= 2); err != nil {
		return err
	}
	if err := s.ctl.ApplySWG(); err != nil {
		return err
	}
	return newWaveMemory(s.ctl, d).CommitToAWG()
}

// TriggerChannel reads the DAC channel emitting the point-out trigger.
func (s *Scan2D) TriggerChannel() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trig == "" {
		return 0, LockedError{Resource: "trigger channel", Owner: "nothing, select the point-out trigger first"}
	}
	return s.ctl.AWGChannel(s.trig)
}

// SetTriggerChannel selects the DAC channel (13..24) emitting the
// point-out trigger.
func (s *Scan2D) SetTriggerChannel(channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trig == "" {
		return LockedError{Resource: "trigger channel", Owner: "nothing, select the point-out trigger first"}
	}
	if channel < 13 || channel > 24 {
		return RangeError{Field: "trigger channel", Value: float64(channel), Min: 13, Max: 24}
	}
	if err := s.ctl.SetAWGChannel(s.trig, channel); err != nil {
		return err
	}
	avail, err := s.ctl.AWGChannelAvailable(s.trig)
	if err != nil {
		return err
	}
	if !avail {
		return ChannelUnavailableError{Axis: "trigger", Channel: channel}
	}
	return nil
}

// XAxis reconstructs the x sweep voltages from the ramp telemetry.
// The device computes the actual step size, so this reflects what the
// hardware will output, not what was requested.
func (s *Scan2D) XAxis() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScanUnconfigured {
		return nil, nil
	}
	stepSize, err := s.ctl.RampStepSize(s.xy)
	if err != nil {
		return nil, err
	}
	steps, err := s.ctl.RampCycleSteps(s.xy)
	if err != nil {
		return nil, err
	}
	start, err := s.ctl.RampStartVoltage(s.xy)
	if err != nil {
		return nil, err
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = round6(start + float64(i)*stepSize)
	}
	return out, nil
}

// YAxis reads back the y staircase from the wave memory, without the
// trailing return-to-start sample.
func (s *Scan2D) YAxis() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScanUnconfigured {
		return nil, nil
	}
	waveform, err := newWaveMemory(s.ctl, s.xy).Read()
	if err != nil {
		return nil, err
	}
	if len(waveform) > 0 {
		waveform = waveform[:len(waveform)-1]
	}
	return waveform, nil
}

// Enable starts (true) or tears down (false) the scan.  Disabling
// stops the scan and trigger generators, forgets the configuration and
// releases all locks, so the generators are usable directly again.
func (s *Scan2D) Enable(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		if s.state != ScanConfigured {
			return LockedError{Resource: "scan start", Owner: "nothing, configure the scan first"}
		}
		if s.trig != "" {
			if err := s.ctl.StartAWG(s.trig); err != nil {
				return err
			}
		}
		if err := s.ctl.StartAWG(s.xy); err != nil {
			return err
		}
		s.state = ScanRunning
		return nil
	}
	if s.state == ScanUnconfigured {
		return nil
	}
	if err := s.ctl.StopAWG(s.xy); err != nil {
		return err
	}
	if err := s.ctl.SetRampMode(s.xy, "STOP"); err != nil {
		return err
	}
	if s.trig != "" {
		if err := s.ctl.StopAWG(s.trig); err != nil {
			return err
		}
	}
	s.unlockAll()
	s.reset()
	return nil
}

func (s *Scan2D) reset() {
	s.xy = ""
	s.trig = ""
	s.cfg = Scan2DConfig{}
	s.trigMod = ScanTriggerDisable
	s.state = ScanUnconfigured
}

// Progress reports how many x steps of a running scan have completed
// and whether the single ramp cycle has finished.
func (s *Scan2D) Progress() (stepsDone int, finished bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ScanRunning {
		return 0, false, LockedError{Resource: "scan progress", Owner: "nothing, the scan is not running"}
	}
	stepsDone, err = s.ctl.RampStepsDone(s.xy)
	if err != nil {
		return 0, false, err
	}
	cycles, err := s.ctl.RampCyclesDone(s.xy)
	if err != nil {
		return 0, false, err
	}
	return stepsDone, cycles >= 1, nil
}

func (s *Scan2D) releaseTrigger() {
	if s.trig == "" {
		return
	}
	s.locks.unlock(s.trig)
	s.locks.unlock(s.trig.Sibling())
	s.trig = ""
}

func (s *Scan2D) unlockAll() {
	if s.xy != "" {
		s.locks.unlock(s.xy)
		s.locks.unlock(s.xy.Sibling())
	}
	s.releaseTrigger()
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
