package comm_test

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/baspi-lab/lnhrdac2/comm"
)

// crlfEchoServer answers every CR+LF terminated line with the same
// line, the way the DAC echoes queries it cannot parse.
func crlfEchoServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal("could not listen:", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				for {
					line, err := r.ReadString('\n')
					if err != nil {
						return
					}
					io.WriteString(c, line)
				}
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestAskRoundTripStripsTerminator(t *testing.T) {
	addr := crlfEchoServer(t)
	rd := comm.NewRemoteDevice(addr, false)
	if err := rd.Open(); err != nil {
		t.Fatal("could not open:", err)
	}
	defer rd.Close()
	resp, err := rd.Ask("12 v?")
	if err != nil {
		t.Fatal("ask failed:", err)
	}
	if resp != "12 v?" {
		t.Errorf("expected echo without terminator, got %q", resp)
	}
	if strings.ContainsAny(resp, "\r\n") {
		t.Errorf("terminator not stripped from %q", resp)
	}
}

func TestSendRecvSeparately(t *testing.T) {
	addr := crlfEchoServer(t)
	rd := comm.NewRemoteDevice(addr, false)
	if err := rd.Open(); err != nil {
		t.Fatal("could not open:", err)
	}
	defer rd.Close()
	if err := rd.Send([]byte("C AWG-AB CP?")); err != nil {
		t.Fatal("send failed:", err)
	}
	resp, err := rd.Recv()
	if err != nil {
		t.Fatal("recv failed:", err)
	}
	if string(resp) != "C AWG-AB CP?" {
		t.Errorf("got %q", resp)
	}
}

func TestNotConnectedErrors(t *testing.T) {
	rd := comm.NewRemoteDevice("127.0.0.1:1", false)
	if err := rd.Send([]byte("1 on")); err != comm.ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if _, err := rd.Recv(); err != comm.ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
