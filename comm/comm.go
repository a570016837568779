/*Package comm provides the line-oriented transport used to talk to the
LNHR DAC II.

The instrument speaks an ASCII request/reply protocol over its Telnet
socket (port 23) or its RS-232 port, with CR+LF termination in both
directions.  It has no request framing or message IDs, so replies can
only be matched to commands by strict alternation; RemoteDevice
serializes all traffic behind an internal mutex and callers simply use
Ask.

A minimal example:

	rd := comm.NewRemoteDevice("192.168.0.5:23", false)
	if err := rd.Open(); err != nil {
		// handle
	}
	defer rd.Close()
	resp, err := rd.Ask("1 v?")
*/
package comm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

var (
	// ErrNotConnected is generated when Conn is nil and Send or Recv is called.
	ErrNotConnected = errors.New("conn is nil, not connected to remote")

	// ErrTerminatorNotFound is generated when the termination sequence is not found in a response
	ErrTerminatorNotFound = errors.New("termination sequence not found")
)

// Asker performs one serialized request/reply round trip.
type Asker interface {
	Ask(string) (string, error)
}

// Sender writes one terminated line to the remote.
type Sender interface {
	Send([]byte) error
}

// Recver reads one terminated line from the remote.
type Recver interface {
	Recv() ([]byte, error)
}

// A Communicator can Open, Send, Recv, Ask and Close.
type Communicator interface {
	io.Closer
	Sender
	Recver
	Asker

	Open() error
}

/*RemoteDevice is a connection to the DAC with CR+LF line framing.

The zero value is not usable; create instances with NewRemoteDevice.
All of Send, Recv and Ask are concurrent-safe; Ask holds the lock for
the full round trip so replies cannot interleave between callers.
*/
type RemoteDevice struct {
	// Addr is the network address (host:port) or serial device path
	Addr string

	// IsSerial selects the RS-232 port instead of the Telnet socket
	IsSerial bool

	// Timeout bounds connect, read, and write on the TCP branch
	Timeout time.Duration

	// Baud is the serial baud rate, only used when IsSerial
	Baud int

	Conn io.ReadWriteCloser

	mu  sync.Mutex
	buf *bufio.Reader
}

// NewRemoteDevice creates a new RemoteDevice instance
func NewRemoteDevice(addr string, isSerial bool) *RemoteDevice {
	return &RemoteDevice{
		Addr:     addr,
		IsSerial: isSerial,
		Timeout:  3 * time.Second,
		Baud:     115200}
}

// Terminator is the line termination used by the DAC in both directions.
func (rd *RemoteDevice) Terminator() []byte {
	return []byte("\r\n")
}

// Open the connection, setting the Conn variable.  Uses an exponential
// backoff; the DAC's Telnet server does not like being connection
// thrashed after a dropped session.
func (rd *RemoteDevice) Open() error {
	wasTimeout := false
	op := func() error {
		err := rd.open()
		if err != nil {
			errS := strings.ToLower(err.Error())
			if strings.Contains(errS, "refused") {
				return err
			}
			wasTimeout = true
			return nil
		}
		return nil
	}

	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock})
	if err == nil && !wasTimeout {
		return nil
	}
	if wasTimeout {
		return fmt.Errorf("connection timeout to %s", rd.Addr)
	}
	return err
}

func (rd *RemoteDevice) open() error {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if rd.IsSerial {
		conn, err = serial.OpenPort(&serial.Config{
			Name:        rd.Addr,
			Baud:        rd.Baud,
			ReadTimeout: rd.Timeout})
	} else {
		conn, err = TCPSetup(rd.Addr, rd.Timeout)
	}
	if err != nil {
		return err
	}
	rd.mu.Lock()
	rd.Conn = conn
	rd.buf = bufio.NewReader(conn)
	rd.mu.Unlock()
	return nil
}

// Close the connection, nil-ing the Conn variable
func (rd *RemoteDevice) Close() error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.Conn == nil {
		return nil
	}
	err := rd.Conn.Close()
	if err == nil {
		rd.Conn = nil
		rd.buf = nil
	}
	return err
}

// Send writes data to the remote with the terminator appended
func (rd *RemoteDevice) Send(b []byte) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.send(b)
}

func (rd *RemoteDevice) send(b []byte) error {
	if rd.Conn == nil {
		return ErrNotConnected
	}
	if c, ok := rd.Conn.(net.Conn); ok {
		c.SetWriteDeadline(time.Now().Add(rd.Timeout))
	}
	b = append(b, rd.Terminator()...)
	_, err := rd.Conn.Write(b)
	return err
}

// Recv receives one line from the remote and strips the terminator
func (rd *RemoteDevice) Recv() ([]byte, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.recv()
}

func (rd *RemoteDevice) recv() ([]byte, error) {
	if rd.Conn == nil {
		return nil, ErrNotConnected
	}
	if c, ok := rd.Conn.(net.Conn); ok {
		c.SetReadDeadline(time.Now().Add(rd.Timeout))
	}
	term := rd.Terminator()
	// scan for the final byte of the terminator, then verify the
	// full sequence is present
	buf, err := rd.buf.ReadBytes(term[len(term)-1])
	if err != nil {
		return []byte{}, err
	}
	if bytes.HasSuffix(buf, term) {
		return buf[:len(buf)-len(term)], nil
	}
	return buf, ErrTerminatorNotFound
}

// Ask sends a command and returns the single-line reply.  The lock is
// held for the whole round trip; the DAC has no request IDs, so
// interleaved traffic from two callers would cross replies.
func (rd *RemoteDevice) Ask(cmd string) (string, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	err := rd.send([]byte(cmd))
	if err != nil {
		return "", err
	}
	resp, err := rd.recv()
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// Drain discards any buffered unread data, e.g. the trailing lines of
// a multi-line help or info reply.  Only the first line of such
// replies is returned by Ask; the rest must be drained before the next
// command or the replies will cross.
func (rd *RemoteDevice) Drain() {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	if rd.buf == nil {
		return
	}
	if c, ok := rd.Conn.(net.Conn); ok {
		c.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	}
	for {
		n := rd.buf.Buffered()
		if n == 0 {
			// one blocking read to pick up data still in flight
			if _, err := rd.buf.Peek(1); err != nil {
				return
			}
			continue
		}
		rd.buf.Discard(n)
	}
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}
