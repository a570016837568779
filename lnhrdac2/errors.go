package lnhrdac2

import (
	"fmt"
	"strings"
	"time"
)

// DeviceError is generated when the DAC rejects a command, either by
// answering an action with a nonzero error code ("1".."5") or by
// echoing an unparseable query back with its question mark intact.
type DeviceError struct {
	Cmd  string
	Resp string
}

func (e DeviceError) Error() string {
	return fmt.Sprintf("device rejected command %q, response %q", e.Cmd, e.Resp)
}

// MemoryIntegrityError is generated when the number of samples in a
// waveform memory does not match what was written to or read from it.
// It indicates a transport drop or a firmware quirk and is never
// retried automatically.
type MemoryIntegrityError struct {
	Memory   Designator
	Op       string // "read" or "write"
	Expected int
	Actual   int
}

func (e MemoryIntegrityError) Error() string {
	return fmt.Sprintf("wave memory %s %s integrity failure, expected %d samples, device reports %d",
		e.Memory, e.Op, e.Expected, e.Actual)
}

// CommitTimeoutError is generated when the busy flag of a wave memory
// does not clear within the polling window after a commit to AWG
// memory.
type CommitTimeoutError struct {
	Memory   Designator
	Attempts int
	Interval time.Duration
}

func (e CommitTimeoutError) Error() string {
	return fmt.Sprintf("wave memory %s still busy after %d polls at %v interval",
		e.Memory, e.Attempts, e.Interval)
}

// LockedError is generated when a parameter of a resource reserved by
// a higher-level workflow (the 2D scan coordinator) is set directly.
type LockedError struct {
	Resource string
	Owner    string
}

func (e LockedError) Error() string {
	return fmt.Sprintf("%s is locked by %s and currently not accessible", e.Resource, e.Owner)
}

// ResourceExhaustedError is generated when no idle AWG/ramp pair is
// available for a reservation.  Required names exactly which resources
// have to be idle for the reservation to succeed.
type ResourceExhaustedError struct {
	Required string
}

func (e ResourceExhaustedError) Error() string {
	return "resource reservation failed: " + e.Required
}

// ChannelUnavailableError is generated when a DAC channel bound to an
// AWG or ramp generator reports itself unavailable, e.g. because
// another generator is already driving it.
type ChannelUnavailableError struct {
	Axis    string
	Channel int
}

func (e ChannelUnavailableError) Error() string {
	return fmt.Sprintf("the chosen %s output (channel %d) is not available", e.Axis, e.Channel)
}

// RangeError is generated when a numeric configuration value is
// outside its documented range.  Hint, when present, suggests how to
// correct the input.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
	Hint  string
}

func (e RangeError) Error() string {
	s := fmt.Sprintf("%s=%v is out of range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
	if e.Hint != "" {
		s += ", " + e.Hint
	}
	return s
}

// ChoiceError is generated when an enumerated option (waveform shape,
// trigger mode) is not one of the valid values.
type ChoiceError struct {
	Field string
	Value string
	Valid []string
}

func (e ChoiceError) Error() string {
	return fmt.Sprintf("%s=%q is invalid, valid values are: %s",
		e.Field, e.Value, strings.Join(e.Valid, ", "))
}
