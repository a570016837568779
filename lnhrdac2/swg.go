package lnhrdac2

import (
	"log"
	"sort"
)

// Wave memory operations applied by SWG.Apply.
const (
	SWGOpOverwrite     = 0
	SWGOpAppendStart   = 1
	SWGOpAppendEnd     = 2
	SWGOpSumStart      = 3
	SWGOpSumEnd        = 4
	SWGOpMultiplyStart = 5
	SWGOpMultiplyEnd   = 6
	SWGOpDivideStart   = 7
	SWGOpDivideEnd     = 8
)

// swgShapes maps the user-facing shape names onto the device's
// waveform family codes.  Cosine is a sine with an extra 90 degrees of
// phase; rectangle is a pulse pinned to 50% duty cycle.
var swgShapes = map[string]int{
	"sine":         0,
	"cosine":       0,
	"triangle":     1,
	"sawtooth":     2,
	"ramp":         3,
	"rectangle":    4,
	"pulse":        4,
	"fixed noise":  5,
	"random noise": 6,
	"DC":           7,
}

func shapeNames() []string {
	names := make([]string, 0, len(swgShapes))
	for k := range swgShapes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SWGConfig describes one standard waveform.  DutyCycle only matters
// for the pulse shape; for noise shapes Amplitude is the RMS value.
type SWGConfig struct {
	Shape     string  // see swgShapes for valid names
	Frequency float64 // Hz, 0.001 .. 10000
	Amplitude float64 // V, up to +/- 50; the output clips at +/- 10
	Offset    float64 // V
	Phase     float64 // degrees
	DutyCycle float64 // percent, pulse only
}

// DefaultSWGConfig returns a 100 Hz, 0.5 V sine.
func DefaultSWGConfig() SWGConfig {
	return SWGConfig{Shape: "sine", Frequency: 100.0, Amplitude: 0.5}
}

func (c SWGConfig) validate() error {
	if _, ok := swgShapes[c.Shape]; !ok {
		return ChoiceError{Field: "shape", Value: c.Shape, Valid: shapeNames()}
	}
	if c.Frequency < 0.001 || c.Frequency > 10000.0 {
		return RangeError{Field: "frequency", Value: c.Frequency, Min: 0.001, Max: 10000.0, Hint: "Hz"}
	}
	if c.Amplitude < -50.0 || c.Amplitude > 50.0 {
		return RangeError{Field: "amplitude", Value: c.Amplitude, Min: -50.0, Max: 50.0}
	}
	if c.Offset < -10.0 || c.Offset > 10.0 {
		return RangeError{Field: "offset", Value: c.Offset, Min: -10.0, Max: 10.0}
	}
	if c.Phase < -360.0 || c.Phase > 360.0 {
		return RangeError{Field: "phase", Value: c.Phase, Min: -360.0, Max: 360.0, Hint: "degrees"}
	}
	if c.DutyCycle < 0.0 || c.DutyCycle > 100.0 {
		return RangeError{Field: "duty cycle", Value: c.DutyCycle, Min: 0.0, Max: 100.0, Hint: "percent"}
	}
	return nil
}

// SWG is the device's standard waveform generator.  It synthesizes
// common shapes directly into a wave memory, avoiding the slow
// sample-by-sample upload path.
type SWG struct {
	ctl *Controller

	// Logger receives the non-fatal frequency advisory; nil silences it.
	Logger *log.Logger
}

func newSWG(ctl *Controller) *SWG {
	return &SWG{ctl: ctl, Logger: log.Default()}
}

// Configure programs the generator with a waveform description.
// Nothing is written to a memory yet; Apply does that.  The generator
// is always put in generate-new mode with an adaptive clock; Apply
// revisits the clock decision once the target memory is known.
func (s *SWG) Configure(cfg SWGConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := s.ctl.SetSWGGenerateNew(true); err != nil {
		return err
	}
	if err := s.ctl.SetSWGAdaptClock(true); err != nil {
		return err
	}
	if err := s.ctl.SetSWGShape(swgShapes[cfg.Shape]); err != nil {
		return err
	}
	if err := s.ctl.SetSWGDesiredFrequency(cfg.Frequency); err != nil {
		return err
	}
	if err := s.ctl.SetSWGAmplitude(cfg.Amplitude); err != nil {
		return err
	}
	if err := s.ctl.SetSWGOffset(cfg.Offset); err != nil {
		return err
	}
	phase := cfg.Phase
	if cfg.Shape == "cosine" {
		phase += 90.0
	}
	if err := s.ctl.SetSWGPhase(phase); err != nil {
		return err
	}
	switch cfg.Shape {
	case "rectangle":
		return s.ctl.SetSWGDutyCycle(50.0)
	case "pulse":
		return s.ctl.SetSWGDutyCycle(cfg.DutyCycle)
	}
	return nil
}

// Apply synthesizes the configured waveform into the wave memory of
// awg and commits it to the AWG play memory.
//
// If the sibling AWG on the same board already holds a waveform, the
// shared clock period is kept rather than adapted, so applying cannot
// silently retime it.  When the desired frequency is then unreachable
// with the fixed clock, the nearest achievable frequency is used and
// logged; that is an advisory, not an error.
func (s *SWG) Apply(awg *AWG) error {
	if err := awg.guard(); err != nil {
		return err
	}
	if err := s.ctl.SetSWGTargetMemory(awg.ID); err != nil {
		return err
	}
	siblingSize, err := s.ctl.AWGMemorySize(awg.ID.Sibling())
	if err != nil {
		return err
	}
	if err := s.ctl.SetSWGAdaptClock(siblingSize <= 2); err != nil {
		return err
	}
	desired, err := s.ctl.SWGDesiredFrequency()
	if err != nil {
		return err
	}
	nearest, err := s.ctl.SWGNearestFrequency()
	if err != nil {
		return err
	}
	if nearest != desired && s.Logger != nil {
		s.Logger.Printf("swg: %g Hz is not reachable with the current clock, using %g Hz instead; clearing the unused waveform on AWG %s may resolve this",
			desired, nearest, awg.ID.Sibling())
	}
	if err := s.ctl.ApplySWG(); err != nil {
		return err
	}
	return awg.Mem.CommitToAWG()
}
