package lnhrdac2

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// MaxMemorySize is the sample capacity of each wave and AWG memory.
const MaxMemorySize = 34000

// blockSize is how many samples one "blk?" query returns.
const blockSize = 1000

// WaveMemory is one of the four waveform staging buffers (A..D).
// Waveforms are assembled here sample by sample and then committed to
// the corresponding AWG play memory in a single device-side copy.
type WaveMemory struct {
	ctl *Controller

	// ID names the buffer and its associated AWG.
	ID Designator

	// SettleAfterWrite is the pause between the last sample write and
	// the size verification; the firmware updates its sample counter
	// asynchronously.
	SettleAfterWrite time.Duration

	// CommitPollInterval and CommitPollAttempts bound the busy-wait
	// after a commit.  A full 34000-sample copy takes a few hundred
	// milliseconds, so the defaults allow for several seconds.
	CommitPollInterval time.Duration
	CommitPollAttempts int
}

func newWaveMemory(ctl *Controller, id Designator) *WaveMemory {
	return &WaveMemory{
		ctl:                ctl,
		ID:                 id,
		SettleAfterWrite:   200 * time.Millisecond,
		CommitPollInterval: 100 * time.Millisecond,
		CommitPollAttempts: 50}
}

// Size reads how many samples the memory currently holds.
func (m *WaveMemory) Size() (int, error) {
	return m.ctl.WavMemorySize(m.ID)
}

// Clear empties the memory; Size returns 0 afterwards.
func (m *WaveMemory) Clear() error {
	return m.ctl.ClearWavMemory(m.ID)
}

// Save copies the memory into the device's volatile save buffer.
func (m *WaveMemory) Save() error {
	return m.ctl.SaveWavMemory(m.ID)
}

// Read returns the full contents of the memory in volts.  It reads in
// 1000-sample blocks; unwritten trailing addresses come back as the
// literal "NaN" and are stripped, so the result length equals the
// device-reported size.  The read is verified against that size.
func (m *WaveMemory) Read() ([]float64, error) {
	size, err := m.Size()
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, size)
	for addr := 0; addr < size; addr += blockSize {
		block, err := m.ctl.WavMemoryBlock(m.ID, addr)
		if err != nil {
			return nil, err
		}
		block = trimTrailingNaN(block)
		for _, s := range block {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	if len(out) != size {
		return nil, MemoryIntegrityError{Memory: m.ID, Op: "read", Expected: size, Actual: len(out)}
	}
	return out, nil
}

// trimTrailingNaN drops the unwritten tail of a block.  Interior NaNs
// never occur; the firmware pads only at the end.
func trimTrailingNaN(block []string) []string {
	i := len(block)
	for i > 0 && strings.EqualFold(strings.TrimSpace(block[i-1]), "nan") {
		i--
	}
	return block[:i]
}

// Write replaces the memory contents with the given voltages.  The
// memory is cleared first so stale samples beyond the new length
// cannot survive, and the device-reported size is verified after a
// settle pause.
func (m *WaveMemory) Write(voltages []float64) error {
	if len(voltages) > MaxMemorySize {
		return RangeError{Field: "waveform length", Value: float64(len(voltages)),
			Min: 0, Max: MaxMemorySize}
	}
	for i, v := range voltages {
		if v < -10.0 || v > 10.0 {
			return RangeError{Field: "waveform sample " + strconv.Itoa(i),
				Value: v, Min: -10.0, Max: 10.0}
		}
	}
	if err := m.Clear(); err != nil {
		return err
	}
	for i, v := range voltages {
		if err := m.ctl.SetWavMemoryValue(m.ID, i, v); err != nil {
			return err
		}
	}
	m.ctl.settle(m.SettleAfterWrite)
	size, err := m.Size()
	if err != nil {
		return err
	}
	if size != len(voltages) {
		return MemoryIntegrityError{Memory: m.ID, Op: "write", Expected: len(voltages), Actual: size}
	}
	return nil
}

// CommitToAWG copies the wave memory into its AWG play memory and
// waits for the device-side copy to finish.  The busy flag is polled
// at CommitPollInterval up to CommitPollAttempts times; if it never
// clears the commit is reported as timed out, the device may still be
// copying.
func (m *WaveMemory) CommitToAWG() error {
	if err := m.ctl.WriteWavToAWG(m.ID); err != nil {
		return err
	}
	op := func() error {
		busy, err := m.ctl.WavBusy(m.ID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if busy {
			return errStillBusy
		}
		return nil
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(m.CommitPollInterval),
		uint64(m.CommitPollAttempts))
	err := backoff.Retry(op, b)
	if err == errStillBusy {
		return CommitTimeoutError{Memory: m.ID,
			Attempts: m.CommitPollAttempts,
			Interval: m.CommitPollInterval}
	}
	if perm, ok := err.(*backoff.PermanentError); ok {
		return perm.Err
	}
	return err
}

var errStillBusy = errors.New("wave memory busy")
