package lnhrdac2

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testMemory(replies map[string]string) (*WaveMemory, *fakeDAC) {
	ctl, fake, _ := testController(replies)
	m := newWaveMemory(ctl, GenA)
	m.SettleAfterWrite = 0
	m.CommitPollInterval = 0
	m.CommitPollAttempts = 3
	return m, fake
}

// block renders n voltages followed by NaN padding up to a full
// 1000-sample block, the way the firmware pads unwritten addresses.
func block(voltages ...float64) string {
	parts := make([]string, 0, blockSize)
	for _, v := range voltages {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	for len(parts) < blockSize {
		parts = append(parts, "NaN")
	}
	return strings.Join(parts, ";")
}

func TestMemoryReadStripsTrailingNaN(t *testing.T) {
	m, _ := testMemory(map[string]string{
		"C WAV-A MS?":  "3",
		"wav-A 0 blk?": block(0.1, -0.2, 0.3),
	})
	got, err := m.Read()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0.1, -0.2, 0.3}, got); diff != "" {
		t.Errorf("waveform differs (-want +got):\n%s", diff)
	}
}

func TestMemoryReadSpansBlocks(t *testing.T) {
	full := make([]float64, blockSize)
	for i := range full {
		full[i] = 0.001
	}
	m, fake := testMemory(map[string]string{
		"C WAV-A MS?":    "1002",
		"wav-A 0 blk?":   block(full...),
		"wav-A 3e8 blk?": block(0.5, 0.25),
	})
	got, err := m.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1002 {
		t.Fatalf("read %d samples, expected 1002", len(got))
	}
	if got[1000] != 0.5 || got[1001] != 0.25 {
		t.Errorf("tail samples are %v, %v", got[1000], got[1001])
	}
	if !fake.sent("wav-A 3e8 blk?") {
		t.Error("second block was not requested at address 0x3e8")
	}
}

func TestMemoryReadIntegrityFailure(t *testing.T) {
	m, _ := testMemory(map[string]string{
		"C WAV-A MS?":  "5",
		"wav-A 0 blk?": block(0.1, 0.2), // device claims 5, delivers 2
	})
	_, err := m.Read()
	mie, ok := err.(MemoryIntegrityError)
	if !ok {
		t.Fatalf("got %T (%v), expected MemoryIntegrityError", err, err)
	}
	if mie.Expected != 5 || mie.Actual != 2 {
		t.Errorf("error reports %d/%d, expected 5/2", mie.Expected, mie.Actual)
	}
}

func TestMemoryWriteClearsFirstAndVerifies(t *testing.T) {
	m, fake := testMemory(map[string]string{
		"C WAV-A MS?": "2",
	})
	if err := m.Write([]float64{1.5, -1.5}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"C WAV-A CLR",
		"wav-A 0 1.500000",
		"wav-A 1 -1.500000",
		"C WAV-A MS?",
	}
	if diff := cmp.Diff(want, fake.cmds); diff != "" {
		t.Errorf("command sequence differs (-want +got):\n%s", diff)
	}
}

func TestMemoryWriteIntegrityFailure(t *testing.T) {
	m, _ := testMemory(map[string]string{
		"C WAV-A MS?": "1", // device lost a sample
	})
	err := m.Write([]float64{0.1, 0.2})
	if _, ok := err.(MemoryIntegrityError); !ok {
		t.Fatalf("got %T (%v), expected MemoryIntegrityError", err, err)
	}
}

func TestMemoryWriteRejectsOutOfRangeSample(t *testing.T) {
	m, fake := testMemory(nil)
	err := m.Write([]float64{0.1, 11.0})
	if _, ok := err.(RangeError); !ok {
		t.Fatalf("got %T (%v), expected RangeError", err, err)
	}
	if len(fake.cmds) != 0 {
		t.Errorf("device was touched before validation: %v", fake.cmds)
	}
}

func TestCommitWaitsForBusyFlag(t *testing.T) {
	m, _ := testMemory(nil)
	// the flag clears on the third poll
	polls := 0
	m.ctl.conn = askFunc(func(cmd string) (string, error) {
		if cmd == "C WAV-A BUSY?" {
			polls++
			if polls > 2 {
				return "0", nil
			}
			return "1", nil
		}
		return "0", nil
	})
	if err := m.CommitToAWG(); err != nil {
		t.Fatal(err)
	}
	if polls != 3 {
		t.Errorf("polled %d times, expected 3", polls)
	}
}

func TestCommitTimesOut(t *testing.T) {
	m, fake := testMemory(nil)
	fake.replies["C WAV-A BUSY?"] = "1"
	err := m.CommitToAWG()
	cte, ok := err.(CommitTimeoutError)
	if !ok {
		t.Fatalf("got %T (%v), expected CommitTimeoutError", err, err)
	}
	if cte.Memory != GenA {
		t.Errorf("error names memory %s", cte.Memory)
	}
}

// askFunc adapts a function to the Asker interface.
type askFunc func(string) (string, error)

func (f askFunc) Ask(cmd string) (string, error) { return f(cmd) }
