package lnhrdac2

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Asker performs one request/reply round trip over the line transport.
// comm.RemoteDevice satisfies this; tests substitute scripted fakes.
type Asker interface {
	Ask(string) (string, error)
}

// drainer is the optional transport capability to discard the trailing
// lines of multi-line replies (help, health, firmware banners).
type drainer interface {
	Drain()
}

// Designator names one of the four AWG / ramp generator / wave memory
// resource sets.
type Designator string

const (
	GenA Designator = "A"
	GenB Designator = "B"
	GenC Designator = "C"
	GenD Designator = "D"
)

// Board returns the clock board ("AB" or "CD") a generator lives on.
// Both generators of a board share one sampling clock.
func (d Designator) Board() string {
	switch d {
	case GenA, GenB:
		return "AB"
	default:
		return "CD"
	}
}

// Sibling returns the other generator on the same clock board.
func (d Designator) Sibling() Designator {
	switch d {
	case GenA:
		return GenB
	case GenB:
		return GenA
	case GenC:
		return GenD
	default:
		return GenC
	}
}

// memIndex is the numeric wave memory selector used by the SWG
// ("C SWG WMEM n").
func (d Designator) memIndex() int {
	switch d {
	case GenA:
		return 0
	case GenB:
		return 1
	case GenC:
		return 2
	default:
		return 3
	}
}

/*Controller is the protocol engine of the driver.  It owns the command
grammar: it serializes typed operations into the DAC's ASCII command
strings, validates the acknowledgement of every action ("0" is the only
success code) and every query (a reply still containing '?' means the
device could not parse it), and imposes the mandatory settle delays
after control commands.

The delays are a firmware workaround, not an optimization target:
control commands (leading 'C') mutate state shared between subsystems
and the device needs time to propagate it internally.  Skipping them
risks reading stale cross-subsystem state, e.g. a just-changed clock
period not yet visible to a dependent AWG.

The controller is safe for concurrent use; a single mutex serializes
round trips including their settle delay, since the device has no
request framing to demultiplex interleaved replies.
*/
type Controller struct {
	conn Asker

	// CtrlDelay is the settle time after any control ('C') command.
	CtrlDelay time.Duration

	// WriteDelay is the additional settle time after a memory-commit
	// control command (one containing "write").
	WriteDelay time.Duration

	// sleep is time.Sleep, swappable for tests
	sleep func(time.Duration)

	mu sync.Mutex
}

// NewController returns a Controller speaking through conn with the
// stock settle delays.
func NewController(conn Asker) *Controller {
	return &Controller{
		conn:       conn,
		CtrlDelay:  200 * time.Millisecond,
		WriteDelay: 300 * time.Millisecond,
		sleep:      time.Sleep}
}

// Ask performs one validated round trip.  Most callers want the typed
// wrappers below; Ask is exported for commands not covered by them.
func (c *Controller) Ask(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, err := c.conn.Ask(cmd)
	if err != nil {
		return "", err
	}
	if strings.Contains(cmd, "?") {
		if strings.Contains(resp, "?") {
			return "", DeviceError{Cmd: cmd, Resp: resp}
		}
	} else if resp != "0" {
		return "", DeviceError{Cmd: cmd, Resp: resp}
	}
	if len(cmd) > 0 && (cmd[0] == 'C' || cmd[0] == 'c') {
		c.sleep(c.CtrlDelay)
		if strings.Contains(strings.ToLower(cmd), "write") {
			c.sleep(c.WriteDelay)
		}
	}
	return resp, nil
}

// settle blocks for d through the injected clock; used by the memory
// manager for the post-bulk-write wait.
func (c *Controller) settle(d time.Duration) {
	c.sleep(d)
}

func (c *Controller) exec(format string, args ...interface{}) error {
	_, err := c.Ask(fmt.Sprintf(format, args...))
	return err
}

func (c *Controller) queryString(format string, args ...interface{}) (string, error) {
	return c.Ask(fmt.Sprintf(format, args...))
}

func (c *Controller) queryInt(format string, args ...interface{}) (int, error) {
	resp, err := c.queryString(format, args...)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(resp))
}

func (c *Controller) queryFloat(format string, args ...interface{}) (float64, error) {
	resp, err := c.queryString(format, args...)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(resp), 64)
}

func (c *Controller) queryHex(format string, args ...interface{}) (int, error) {
	resp, err := c.queryString(format, args...)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(resp), 16, 64)
	return int(v), err
}

func (c *Controller) queryBool(format string, args ...interface{}) (bool, error) {
	i, err := c.queryInt(format, args...)
	return i != 0, err
}

// queryList splits a semicolon-delimited multi-value reply.
func (c *Controller) queryList(format string, args ...interface{}) ([]string, error) {
	resp, err := c.queryString(format, args...)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(resp), ";"), nil
}

// queryBanner reads the first line of a multi-line informational reply
// and drains the rest so it cannot poison the next command.
func (c *Controller) queryBanner(cmd string) (string, error) {
	resp, err := c.Ask(cmd)
	if d, ok := c.conn.(drainer); ok {
		d.Drain()
	}
	return resp, err
}

// --- per-channel and all-channel commands ---------------------------

// SetChannelCode sets a DAC channel to an internal fixed-point value.
func (c *Controller) SetChannelCode(channel, code int) error {
	return c.exec("%d %x", channel, code)
}

// SetAllCodes sets every DAC channel to the same fixed-point value in
// one synchronized device action.
func (c *Controller) SetAllCodes(code int) error {
	return c.exec("all %x", code)
}

// ChannelCode reads the present fixed-point value of a channel.
func (c *Controller) ChannelCode(channel int) (int, error) {
	return c.queryHex("%d v?", channel)
}

// AllCodes reads the present fixed-point values of all channels.
func (c *Controller) AllCodes() ([]int, error) {
	return c.hexList("all v?")
}

// RegisteredCode reads the registered (next to be output) value of a
// channel.
func (c *Controller) RegisteredCode(channel int) (int, error) {
	return c.queryHex("%d vr?", channel)
}

// AllRegisteredCodes reads the registered values of all channels.
func (c *Controller) AllRegisteredCodes() ([]int, error) {
	return c.hexList("all vr?")
}

func (c *Controller) hexList(cmd string) ([]int, error) {
	raw, err := c.queryList(cmd)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 16, 64)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

// SetChannelStatus turns a channel on or off ("ON"/"OFF").
func (c *Controller) SetChannelStatus(channel int, status string) error {
	return c.exec("%d %s", channel, status)
}

// SetAllStatus turns all channels on or off simultaneously.
func (c *Controller) SetAllStatus(status string) error {
	return c.exec("all %s", status)
}

// ChannelStatus reads "ON" or "OFF" for one channel.
func (c *Controller) ChannelStatus(channel int) (string, error) {
	return c.queryString("%d s?", channel)
}

// AllStatus reads the on/off status of every channel.
func (c *Controller) AllStatus() ([]string, error) {
	return c.queryList("all s?")
}

// SetChannelBandwidth selects "LBW" (100 Hz) or "HBW" (100 kHz).
func (c *Controller) SetChannelBandwidth(channel int, bandwidth string) error {
	return c.exec("%d %s", channel, bandwidth)
}

// SetAllBandwidth selects the bandwidth of all channels at once.
func (c *Controller) SetAllBandwidth(bandwidth string) error {
	return c.exec("all %s", bandwidth)
}

// ChannelBandwidth reads "LBW" or "HBW" for one channel.
func (c *Controller) ChannelBandwidth(channel int) (string, error) {
	return c.queryString("%d bw?", channel)
}

// AllBandwidth reads the bandwidth mode of every channel.
func (c *Controller) AllBandwidth() ([]string, error) {
	return c.queryList("all bw?")
}

// ChannelMode reads the operating mode of a channel
// ("ERR", "DAC", "SYN", "RMP", "AWG" or "---").
func (c *Controller) ChannelMode(channel int) (string, error) {
	return c.queryString("%d m?", channel)
}

// AllModes reads the operating mode of every channel.  The driver also
// uses the reply length to discover whether this is a 12 or 24 channel
// unit.
func (c *Controller) AllModes() ([]string, error) {
	return c.queryList("all m?")
}

// --- AWG and wave memory data commands ------------------------------

// SetAWGMemoryValue writes one fixed-point sample into an AWG memory.
func (c *Controller) SetAWGMemoryValue(mem Designator, address, code int) error {
	return c.exec("awg-%s %x %x", mem, address, code)
}

// SetAWGMemoryAll fills an entire AWG memory with one value.
func (c *Controller) SetAWGMemoryAll(mem Designator, code int) error {
	return c.exec("awg-%s ALL %x", mem, code)
}

// AWGMemoryValue reads one AWG memory address.  The AWG must not run.
func (c *Controller) AWGMemoryValue(mem Designator, address int) (int, error) {
	return c.queryHex("awg-%s %x?", mem, address)
}

// AWGMemoryBlock reads a 1000-sample block of an AWG memory.
func (c *Controller) AWGMemoryBlock(mem Designator, startAddress int) ([]string, error) {
	return c.queryList("awg-%s %x blk?", mem, startAddress)
}

// SetWavMemoryValue writes one voltage sample into a wave memory.
func (c *Controller) SetWavMemoryValue(mem Designator, address int, voltage float64) error {
	return c.exec("wav-%s %x %.6f", mem, address, voltage)
}

// SetWavMemoryAll fills an entire wave memory with one voltage.
func (c *Controller) SetWavMemoryAll(mem Designator, voltage float64) error {
	return c.exec("wav-%s all %.6f", mem, voltage)
}

// WavMemoryValue reads one wave memory address; the reply is a decimal
// voltage or the literal "NaN" for a never-written address.
func (c *Controller) WavMemoryValue(mem Designator, address int) (string, error) {
	return c.queryString("wav-%s %x?", mem, address)
}

// WavMemoryBlock reads a 1000-sample block of a wave memory.
func (c *Controller) WavMemoryBlock(mem Designator, startAddress int) ([]string, error) {
	return c.queryList("wav-%s %x blk?", mem, startAddress)
}

// SetPolynomial programs the polynomial applied to an AWG memory on
// reload; coefficients are in ascending order of power.
func (c *Controller) SetPolynomial(mem Designator, coefficients []float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "poly-%s", mem)
	for _, coeff := range coefficients {
		fmt.Fprintf(&b, " %g", coeff)
	}
	return c.exec("%s", b.String())
}

// Polynomial reads back the programmed polynomial coefficients.
func (c *Controller) Polynomial(mem Designator) ([]float64, error) {
	raw, err := c.queryList("poly-%s?", mem)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		out[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// --- board update / synchronization ---------------------------------

// BoardUpdateMode reads whether a DAC board ("H" or "L") updates its
// outputs instantly (0) or synchronously (1).
func (c *Controller) BoardUpdateMode(board string) (int, error) {
	return c.queryInt("C UM-%s?", board)
}

// SetBoardUpdateMode selects instant (0) or synchronous (1) update for
// a DAC board ("H" or "L").
func (c *Controller) SetBoardUpdateMode(board string, mode int) error {
	return c.exec("C UM-%s %d", board, mode)
}

// SyncBoard updates all channels of a board ("H", "L" or "LH")
// synchronously.
func (c *Controller) SyncBoard(board string) error {
	return c.exec("C SYNC-%s", board)
}

// --- ramp/step generator commands -----------------------------------

// SetRampMode starts, stops or holds a ramp generator
// ("START", "STOP" or "HOLD"; designator may also be "ALL").
func (c *Controller) SetRampMode(ramp Designator, mode string) error {
	return c.exec("C RMP-%s %s", ramp, mode)
}

// RampState reads the generator state: 0 idle, 1 ramping up,
// 2 ramping down, 3 holding.
func (c *Controller) RampState(ramp Designator) (RampState, error) {
	i, err := c.queryInt("C RMP-%s S?", ramp)
	return RampState(i), err
}

// RampCyclesDone reads completed cycles since the last start.
func (c *Controller) RampCyclesDone(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s CD?", ramp)
}

// RampStepsDone reads completed steps since the last start.
func (c *Controller) RampStepsDone(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s SD?", ramp)
}

// RampStepSize reads the internally computed volts per step.  The
// device derives it from start/peak voltage and duration; it cannot be
// set directly.
func (c *Controller) RampStepSize(ramp Designator) (float64, error) {
	return c.queryFloat("C RMP-%s SSV?", ramp)
}

// RampCycleSteps reads the internally computed steps per cycle.
func (c *Controller) RampCycleSteps(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s ST?", ramp)
}

// RampChannelAvailable reads whether the bound DAC channel is free for
// the ramp generator to drive.
func (c *Controller) RampChannelAvailable(ramp Designator) (bool, error) {
	return c.queryBool("C RMP-%s AVA?", ramp)
}

// RampChannel reads the DAC channel bound to a ramp generator.
func (c *Controller) RampChannel(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s CH?", ramp)
}

// SetRampChannel binds a DAC channel to a ramp generator.
func (c *Controller) SetRampChannel(ramp Designator, channel int) error {
	return c.exec("C RMP-%s CH %d", ramp, channel)
}

// RampStartVoltage reads the ramp starting voltage.
func (c *Controller) RampStartVoltage(ramp Designator) (float64, error) {
	return c.queryFloat("C RMP-%s STAV?", ramp)
}

// SetRampStartVoltage sets the ramp starting voltage.
func (c *Controller) SetRampStartVoltage(ramp Designator, voltage float64) error {
	return c.exec("C RMP-%s STAV %.6f", ramp, voltage)
}

// RampPeakVoltage reads the stop/peak voltage.
func (c *Controller) RampPeakVoltage(ramp Designator) (float64, error) {
	return c.queryFloat("C RMP-%s STOV?", ramp)
}

// SetRampPeakVoltage sets the stop/peak voltage.
func (c *Controller) SetRampPeakVoltage(ramp Designator, voltage float64) error {
	return c.exec("C RMP-%s STOV %.6f", ramp, voltage)
}

// RampDuration reads the ramp time in seconds.
func (c *Controller) RampDuration(ramp Designator) (float64, error) {
	return c.queryFloat("C RMP-%s RT?", ramp)
}

// SetRampDuration sets the ramp time in seconds; the resolution is the
// 5 ms update tick of the generator.
func (c *Controller) SetRampDuration(ramp Designator, seconds float64) error {
	return c.exec("C RMP-%s RT %.3f", ramp, seconds)
}

// RampShape reads 0 (up only, sawtooth) or 1 (up and down, triangle).
func (c *Controller) RampShape(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s RS?", ramp)
}

// SetRampShape sets 0 (up only) or 1 (up and down).
func (c *Controller) SetRampShape(ramp Designator, shape int) error {
	return c.exec("C RMP-%s RS %d", ramp, shape)
}

// RampCycles reads the programmed cycle count; 0 means infinite.
func (c *Controller) RampCycles(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s CS?", ramp)
}

// SetRampCycles programs the cycle count; 0 means infinite.
func (c *Controller) SetRampCycles(ramp Designator, cycles int) error {
	return c.exec("C RMP-%s CS %d", ramp, cycles)
}

// RampStepMode reads 0 (time-driven ramp, 5 ms tick) or 1 (step mode,
// advancing once per associated AWG cycle).
func (c *Controller) RampStepMode(ramp Designator) (int, error) {
	return c.queryInt("C RMP-%s STEP?", ramp)
}

// SetRampStepMode selects time-driven (0) or step (1) update mode.
func (c *Controller) SetRampStepMode(ramp Designator, mode int) error {
	return c.exec("C RMP-%s STEP %d", ramp, mode)
}

// --- AWG control commands -------------------------------------------

// AWGStartMode reads 0 (normal start) or 1 (auto start after the
// associated step generator updates).
func (c *Controller) AWGStartMode(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s AS?", awg)
}

// SetAWGStartMode selects normal (0) or auto (1) start.
func (c *Controller) SetAWGStartMode(awg Designator, mode int) error {
	return c.exec("C AWG-%s AS %d", awg, mode)
}

// AWGReloadMode reads 0 (keep AWG memory) or 1 (reload from the wave
// memory before each restart; required to apply polynomials).
func (c *Controller) AWGReloadMode(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s RLD?", awg)
}

// SetAWGReloadMode selects keep (0) or reload (1).  Must not be
// changed while a 2D scan is running.
func (c *Controller) SetAWGReloadMode(awg Designator, mode int) error {
	return c.exec("C AWG-%s RLD %d", awg, mode)
}

// ApplyPolynomialEnabled reads whether the memory polynomial is
// applied on reload.
func (c *Controller) ApplyPolynomialEnabled(awg Designator) (bool, error) {
	return c.queryBool("C AWG-%s AP?", awg)
}

// SetApplyPolynomial enables (1) or skips (0) the memory polynomial on
// reload.
func (c *Controller) SetApplyPolynomial(awg Designator, mode int) error {
	return c.exec("C AWG-%s AP %d", awg, mode)
}

// AdaptiveShiftVoltage reads the per-step shift applied to the
// polynomial's constant coefficient.
func (c *Controller) AdaptiveShiftVoltage(awg Designator) (float64, error) {
	return c.queryFloat("C AWG-%s SHIV?", awg)
}

// SetAdaptiveShiftVoltage sets the voltage shift applied to an AWG
// after each step of its associated step generator.
func (c *Controller) SetAdaptiveShiftVoltage(awg Designator, voltage float64) error {
	return c.exec("C AWG-%s SHIV %.6f", awg, voltage)
}

// AWGBoardOnlyMode reads whether a board ("AB"/"CD") blocks outputs
// without an assigned AWG.
func (c *Controller) AWGBoardOnlyMode(board string) (int, error) {
	return c.queryInt("C AWG-%s ONLY?", board)
}

// SetAWGBoardOnlyMode sets normal (0) or AWG-only (1) board mode.
func (c *Controller) SetAWGBoardOnlyMode(board string, mode int) error {
	return c.exec("C AWG-%s ONLY %d", board, mode)
}

// StartAWG starts an AWG (designator may also be "AB", "CD" or "ALL").
func (c *Controller) StartAWG(awg Designator) error {
	return c.exec("C AWG-%s START", awg)
}

// StopAWG stops an AWG.
func (c *Controller) StopAWG(awg Designator) error {
	return c.exec("C AWG-%s STOP", awg)
}

// AWGRunning reads whether an AWG is currently running.
func (c *Controller) AWGRunning(awg Designator) (bool, error) {
	return c.queryBool("C AWG-%s S?", awg)
}

// AWGCyclesDone reads completed cycles since the last start.
func (c *Controller) AWGCyclesDone(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s CD?", awg)
}

// AWGDuration reads the internally computed duration of one AWG cycle
// in seconds.
func (c *Controller) AWGDuration(awg Designator) (float64, error) {
	return c.queryFloat("C AWG-%s DP?", awg)
}

// AWGChannelAvailable reads whether the bound output channel is free.
func (c *Controller) AWGChannelAvailable(awg Designator) (bool, error) {
	return c.queryBool("C AWG-%s AVA?", awg)
}

// AWGChannel reads the output channel bound to an AWG.
func (c *Controller) AWGChannel(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s CH?", awg)
}

// SetAWGChannel binds an output channel to an AWG.
func (c *Controller) SetAWGChannel(awg Designator, channel int) error {
	return c.exec("C AWG-%s CH %d", awg, channel)
}

// AWGMemorySize reads the play-memory size of an AWG (2..34000).
func (c *Controller) AWGMemorySize(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s MS?", awg)
}

// SetAWGMemorySize sets the play-memory size of an AWG.
func (c *Controller) SetAWGMemorySize(awg Designator, size int) error {
	return c.exec("C AWG-%s MS %d", awg, size)
}

// AWGCycles reads the programmed cycle count; 0 means infinite.
func (c *Controller) AWGCycles(awg Designator) (int, error) {
	return c.queryInt("C AWG-%s CS?", awg)
}

// SetAWGCycles programs the cycle count; 0 means infinite.
func (c *Controller) SetAWGCycles(awg Designator, cycles int) error {
	return c.exec("C AWG-%s CS %d", awg, cycles)
}

// AWGTriggerMode reads the external trigger mode of an AWG.
func (c *Controller) AWGTriggerMode(awg Designator) (TriggerMode, error) {
	i, err := c.queryInt("C AWG-%s TM?", awg)
	return TriggerMode(i), err
}

// SetAWGTriggerMode sets the external trigger mode of an AWG.
func (c *Controller) SetAWGTriggerMode(awg Designator, mode TriggerMode) error {
	return c.exec("C AWG-%s TM %d", awg, int(mode))
}

// AWGClockPeriod reads the sampling clock period of a board ("AB" or
// "CD") in microseconds.  The clock is shared by both AWGs of the
// board.
func (c *Controller) AWGClockPeriod(board string) (int, error) {
	return c.queryInt("C AWG-%s CP?", board)
}

// SetAWGClockPeriod sets the sampling clock period of a board in
// microseconds.  It may influence or be influenced by the other AWG of
// the board or by the SWG.
func (c *Controller) SetAWGClockPeriod(board string, periodMicros int) error {
	return c.exec("C AWG-%s CP %d", board, periodMicros)
}

// RefClockEnabled reads the state of the 1 MHz reference clock output.
func (c *Controller) RefClockEnabled() (bool, error) {
	resp, err := c.queryString("C AWG-1MHz?")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(resp), "on"), nil
}

// SetRefClock turns the 1 MHz reference clock output on or off.
func (c *Controller) SetRefClock(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return c.exec("C AWG-1MHz %d", v)
}

// --- standard waveform generator commands ---------------------------

// SWGGenerateNew reads whether the SWG will generate a new waveform
// (true) or replay the saved one (false).
func (c *Controller) SWGGenerateNew() (bool, error) {
	return c.queryBool("C SWG MODE?")
}

// SetSWGGenerateNew selects generate-new (true) or use-saved (false).
func (c *Controller) SetSWGGenerateNew(generateNew bool) error {
	v := 0
	if generateNew {
		v = 1
	}
	return c.exec("C SWG MODE %d", v)
}

// SWGShape reads the numeric waveform family code.
func (c *Controller) SWGShape() (int, error) {
	return c.queryInt("C SWG WF?")
}

// SetSWGShape sets the numeric waveform family code (0 sine, 1
// triangle, 2 sawtooth, 3 ramp, 4 pulse, 5 fixed noise, 6 random
// noise, 7 DC).
func (c *Controller) SetSWGShape(shape int) error {
	return c.exec("C SWG WF %d", shape)
}

// SWGDesiredFrequency reads the requested frequency in Hz.
func (c *Controller) SWGDesiredFrequency() (float64, error) {
	return c.queryFloat("C SWG DF?")
}

// SetSWGDesiredFrequency sets the requested frequency in Hz.  Not all
// frequencies are reachable; see SWGNearestFrequency.
func (c *Controller) SetSWGDesiredFrequency(hz float64) error {
	return c.exec("C SWG DF %g", hz)
}

// SWGAdaptClock reads whether the board clock period will be adapted
// to hit the desired frequency.
func (c *Controller) SWGAdaptClock() (bool, error) {
	return c.queryBool("C SWG ACLK?")
}

// SetSWGAdaptClock selects adapt (true) or keep (false) for the board
// clock.  Adapting may silently retime the sibling AWG on the board.
func (c *Controller) SetSWGAdaptClock(adapt bool) error {
	v := 0
	if adapt {
		v = 1
	}
	return c.exec("C SWG ACLK %d", v)
}

// SWGAmplitude reads the amplitude (RMS for noise shapes) in volts.
func (c *Controller) SWGAmplitude() (float64, error) {
	return c.queryFloat("C SWG AMP?")
}

// SetSWGAmplitude sets the amplitude in volts.
func (c *Controller) SetSWGAmplitude(volts float64) error {
	return c.exec("C SWG AMP %.6f", volts)
}

// SWGOffset reads the DC offset in volts.
func (c *Controller) SWGOffset() (float64, error) {
	return c.queryFloat("C SWG DCV?")
}

// SetSWGOffset sets the DC offset in volts.
func (c *Controller) SetSWGOffset(volts float64) error {
	return c.exec("C SWG DCV %.6f", volts)
}

// SWGPhase reads the phase shift in degrees.
func (c *Controller) SWGPhase() (float64, error) {
	return c.queryFloat("C SWG PHA?")
}

// SetSWGPhase sets the phase shift in degrees.
func (c *Controller) SetSWGPhase(degrees float64) error {
	return c.exec("C SWG PHA %.4f", degrees)
}

// SWGDutyCycle reads the pulse duty cycle in percent.
func (c *Controller) SWGDutyCycle() (float64, error) {
	return c.queryFloat("C SWG DUC?")
}

// SetSWGDutyCycle sets the pulse duty cycle in percent.
func (c *Controller) SetSWGDutyCycle(percent float64) error {
	return c.exec("C SWG DUC %.3f", percent)
}

// SWGMemorySize reads the size the generated waveform will occupy.
func (c *Controller) SWGMemorySize() (int, error) {
	return c.queryInt("C SWG MS?")
}

// SWGNearestFrequency reads the closest achievable frequency to the
// desired one, given the discrete clock periods.
func (c *Controller) SWGNearestFrequency() (float64, error) {
	return c.queryFloat("C SWG NF?")
}

// SWGClipping reads whether the configured waveform exceeds +/- 10 V
// anywhere.
func (c *Controller) SWGClipping() (bool, error) {
	return c.queryBool("C SWG CLP?")
}

// SWGClockPeriod reads the clock period the SWG will use, in
// microseconds.
func (c *Controller) SWGClockPeriod() (int, error) {
	return c.queryInt("C SWG CP?")
}

// SWGTargetMemory reads the wave memory index (0..3 for A..D) the SWG
// writes into.
func (c *Controller) SWGTargetMemory() (int, error) {
	return c.queryInt("C SWG WMEM?")
}

// SetSWGTargetMemory selects the wave memory the SWG writes into.
func (c *Controller) SetSWGTargetMemory(mem Designator) error {
	return c.exec("C SWG WMEM %d", mem.memIndex())
}

// SWGOperation reads the selected wave memory operation code
// (0 overwrite .. 8 divide-to-end).
func (c *Controller) SWGOperation() (int, error) {
	return c.queryInt("C SWG WFUN?")
}

// SetSWGOperation selects the wave memory operation applied by
// ApplySWG.
func (c *Controller) SetSWGOperation(operation int) error {
	return c.exec("C SWG WFUN %d", operation)
}

// SWGLinearization reads whether output linearization is applied when
// committing a wave memory to its AWG memory.
func (c *Controller) SWGLinearization() (bool, error) {
	return c.queryBool("C SWG LIN?")
}

// SetSWGLinearization enables or disables output linearization on
// commit.  A channel must be bound to the associated AWG.
func (c *Controller) SetSWGLinearization(apply bool) error {
	v := 0
	if apply {
		v = 1
	}
	return c.exec("C SWG LIN %d", v)
}

// ApplySWG applies the selected SWG operation to the selected wave
// memory.
func (c *Controller) ApplySWG() error {
	return c.exec("C SWG APPLY")
}

// --- wave memory control commands -----------------------------------

// WavMemorySize reads how many points are stored in a wave memory
// (designator may also be "S" for the save memory).
func (c *Controller) WavMemorySize(mem Designator) (int, error) {
	return c.queryInt("C WAV-%s MS?", mem)
}

// ClearWavMemory clears a wave memory; its size resets to 0.
func (c *Controller) ClearWavMemory(mem Designator) error {
	return c.exec("C WAV-%s CLR", mem)
}

// SaveWavMemory copies a wave memory into the volatile WAV-S memory.
func (c *Controller) SaveWavMemory(mem Designator) error {
	return c.exec("C WAV-%s SAVE", mem)
}

// WavLinearizationChannel reads the channel output linearization is
// computed for, 0 if none.
func (c *Controller) WavLinearizationChannel(mem Designator) (int, error) {
	return c.queryInt("C WAV-%s LINCH?", mem)
}

// WriteWavToAWG commits a wave memory into its AWG play memory.  The
// operation is asynchronous on the device: poll WavBusy until false.
func (c *Controller) WriteWavToAWG(mem Designator) error {
	return c.exec("C WAV-%s WRITE", mem)
}

// WavBusy reads whether a wave memory is still being copied into its
// AWG memory.
func (c *Controller) WavBusy(mem Designator) (bool, error) {
	return c.queryBool("C WAV-%s BUSY?", mem)
}

// --- device information ---------------------------------------------

// Firmware returns the first line of the firmware banner.
func (c *Controller) Firmware() (string, error) {
	return c.queryBanner("soft?")
}

// Hardware returns the first line of the hardware/serial banner.
func (c *Controller) Hardware() (string, error) {
	return c.queryBanner("hard?")
}

// Health returns temperature, CPU load and supply readings.
func (c *Controller) Health() (string, error) {
	return c.queryBanner("health?")
}

// IP returns the device IP address and subnet mask.
func (c *Controller) IP() (string, error) {
	return c.queryBanner("ip?")
}

// Contact returns the manufacturer contact information.
func (c *Controller) Contact() (string, error) {
	return c.queryBanner("contact?")
}
