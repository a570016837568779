/*Package lnhrdac2 is a driver for the Basel Precision Instruments
LNHR DAC II (SP1060), a 12 or 24 channel low-noise high-resolution
voltage source with built-in waveform and ramp generators.

The instrument speaks a line-oriented ASCII protocol over Telnet or
RS-232; package comm provides the transport.  Device is the entry
point: it discovers the channel count, builds the channel, AWG, ramp,
SWG and 2D scan subsystems, and hands out the shared Controller for
anything not covered by the typed surface.
*/
package lnhrdac2

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/baspi-lab/lnhrdac2/comm"
)

// lockTable is the advisory reservation registry for the four
// generator pairs.  The 2D scan locks the pairs it commandeers; the
// guarded AWG and Ramp setters refuse to touch a locked designator.
// It is advisory only, the Controller itself never checks it.
type lockTable struct {
	mu     sync.Mutex
	owners map[Designator]string
}

func newLockTable() *lockTable {
	return &lockTable{owners: map[Designator]string{}}
}

func (t *lockTable) lock(d Designator, owner string) {
	t.mu.Lock()
	t.owners[d] = owner
	t.mu.Unlock()
}

func (t *lockTable) unlock(d Designator) {
	t.mu.Lock()
	delete(t.owners, d)
	t.mu.Unlock()
}

func (t *lockTable) check(d Designator, resource string) error {
	t.mu.Lock()
	owner, held := t.owners[d]
	t.mu.Unlock()
	if held {
		return LockedError{Resource: resource, Owner: owner}
	}
	return nil
}

// IDN is the identity of a connected instrument.
type IDN struct {
	Vendor   string
	Model    string
	Serial   string
	Firmware string
}

// Device is one LNHR DAC II.
type Device struct {
	ctl   *Controller
	rd    *comm.RemoteDevice
	locks *lockTable

	// NumChannels is 12 or 24, discovered at connect time.
	NumChannels int

	// Channels holds one entry per physical output; Channels[0] is
	// channel 1.
	Channels []*Channel

	// All addresses every channel in one firmware command.
	All *ChannelGroup

	// AWGs and Ramps are keyed by designator; 12 channel units only
	// have A and B.
	AWGs  map[Designator]*AWG
	Ramps map[Designator]*Ramp

	// SWG is the standard waveform generator, one per device.
	SWG *SWG

	// Scan is the 2D scan coordinator, one per device.
	Scan *Scan2D
}

// New connects to a DAC at addr (host:port, customarily port 23, or a
// serial device path when isSerial) and initializes the subsystems.
func New(addr string, isSerial bool) (*Device, error) {
	rd := comm.NewRemoteDevice(addr, isSerial)
	if err := rd.Open(); err != nil {
		return nil, err
	}
	d, err := NewWithConn(rd)
	if err != nil {
		rd.Close()
		return nil, err
	}
	d.rd = rd
	return d, nil
}

// NewWithConn builds a Device on an already-open transport.  It is the
// constructor tests use with fake connections; Reconnect is then
// unavailable.
func NewWithConn(conn Asker) (*Device, error) {
	ctl := NewController(conn)
	modes, err := ctl.AllModes()
	if err != nil {
		return nil, err
	}
	n := len(modes)
	if n != 12 && n != 24 {
		return nil, fmt.Errorf("device reports %d channels, expected 12 or 24", n)
	}
	d := &Device{
		ctl:         ctl,
		locks:       newLockTable(),
		NumChannels: n,
		AWGs:        map[Designator]*AWG{},
		Ramps:       map[Designator]*Ramp{},
	}
	d.Channels = make([]*Channel, n)
	for i := range d.Channels {
		d.Channels[i] = &Channel{ctl: ctl, Number: i + 1}
	}
	d.All = &ChannelGroup{ctl: ctl}
	gens := []Designator{GenA, GenB}
	if n == 24 {
		gens = append(gens, GenC, GenD)
	}
	for _, g := range gens {
		d.AWGs[g] = newAWG(ctl, d.locks, g)
		d.Ramps[g] = newRamp(ctl, d.locks, g)
	}
	d.SWG = newSWG(ctl)
	d.Scan = newScan2D(ctl, d.locks, d.SWG)
	return d, nil
}

// Controller exposes the shared protocol engine for commands the typed
// surface does not cover.
func (d *Device) Controller() *Controller {
	return d.ctl
}

// AWG returns the generator for a designator letter, case insensitive,
// or nil if it does not exist on this unit.
func (d *Device) AWG(name string) *AWG {
	return d.AWGs[Designator(strings.ToUpper(name))]
}

// Channel returns the given 1-based channel, or nil if out of range.
func (d *Device) Channel(number int) *Channel {
	if number < 1 || number > len(d.Channels) {
		return nil
	}
	return d.Channels[number-1]
}

// Close closes the transport.  No-op for devices built on a foreign
// connection.
func (d *Device) Close() error {
	if d.rd == nil {
		return nil
	}
	return d.rd.Close()
}

// IDN queries the hardware and firmware banners and extracts the
// identity fields from their fixed-position layout.
func (d *Device) IDN() (IDN, error) {
	hard, err := d.ctl.Hardware()
	if err != nil {
		return IDN{}, err
	}
	soft, err := d.ctl.Firmware()
	if err != nil {
		return IDN{}, err
	}
	return IDN{
		Vendor:   "Basel Precision Instruments GmbH (BASPI)",
		Model:    fmt.Sprintf("LNHR DAC II (SP1060) - %d channel version", d.NumChannels),
		Serial:   bannerField(hard, 37, 51),
		Firmware: bannerField(soft, 18, 33),
	}, nil
}

// bannerField cuts a fixed-position field out of an info banner,
// tolerating short replies from older firmware.
func bannerField(banner string, start, end int) string {
	if start >= len(banner) {
		return ""
	}
	if end > len(banner) {
		end = len(banner)
	}
	return strings.TrimSpace(banner[start:end])
}

// Reconnect re-establishes a dropped connection, retrying up to
// attempts times with wait between tries.  Each try is verified with
// an identity query, since the Telnet server accepts connections
// before the command interpreter is ready.
func (d *Device) Reconnect(attempts int, wait time.Duration) error {
	if d.rd == nil {
		return fmt.Errorf("device was built on a foreign connection, cannot reconnect")
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(wait)
		}
		d.rd.Close()
		if err = d.rd.Open(); err != nil {
			continue
		}
		if _, err = d.IDN(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not reconnect to %s after %d attempts: %w", d.rd.Addr, attempts, err)
}

// Health returns the first line of the temperature / load / supply
// report.
func (d *Device) Health() (string, error) {
	return d.ctl.Health()
}
