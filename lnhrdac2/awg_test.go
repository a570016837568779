package lnhrdac2

import (
	"strings"
	"testing"
)

func testAWG(replies map[string]string) (*AWG, *fakeDAC) {
	ctl, fake, _ := testController(replies)
	awg := newAWG(ctl, newLockTable(), GenA)
	awg.Mem.SettleAfterWrite = 0
	awg.Mem.CommitPollInterval = 0
	return awg, fake
}

func TestSetWaveformRestoresDisturbedBoardClock(t *testing.T) {
	ctl, _, _ := testController(nil)
	var cmds []string
	committed := false
	ctl.conn = askFunc(func(cmd string) (string, error) {
		cmds = append(cmds, cmd)
		switch cmd {
		case "C WAV-A WRITE":
			committed = true
			return "0", nil
		case "C AWG-AB CP?":
			// the commit ghost-modifies the shared clock
			if committed {
				return "10000", nil
			}
			return "5000", nil
		case "C WAV-A MS?":
			return "2", nil
		case "C WAV-A BUSY?":
			return "0", nil
		}
		if strings.Contains(cmd, "?") {
			return cmd, nil
		}
		return "0", nil
	})
	awg := newAWG(ctl, newLockTable(), GenA)
	awg.Mem.SettleAfterWrite = 0
	awg.Mem.CommitPollInterval = 0
	if err := awg.SetWaveform([]float64{0.1, 0.2}); err != nil {
		t.Fatal(err)
	}
	restored := false
	for _, c := range cmds {
		if c == "C AWG-AB CP 5000" {
			restored = true
		}
	}
	if !restored {
		t.Errorf("board clock was not restored; commands: %v", cmds)
	}
}

func TestSetWaveformKeepsUndisturbedBoardClock(t *testing.T) {
	awg, fake := testAWG(map[string]string{
		"C AWG-AB CP?":  "5000",
		"C WAV-A MS?":   "2",
		"C WAV-A BUSY?": "0",
	})
	if err := awg.SetWaveform([]float64{0.1, 0.2}); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C WAV-A WRITE") {
		t.Errorf("waveform was not committed; commands: %v", fake.cmds)
	}
	// the clock came through the commit unchanged, re-sending it would
	// cost a needless settle delay
	if fake.sent("C AWG-AB CP 5000") {
		t.Errorf("unchanged board clock was re-sent; commands: %v", fake.cmds)
	}
}

func TestSetChannelReportsUnavailable(t *testing.T) {
	awg, _ := testAWG(map[string]string{
		"C AWG-A AVA?": "0",
	})
	err := awg.SetChannel(3)
	cue, ok := err.(ChannelUnavailableError)
	if !ok {
		t.Fatalf("got %T (%v), expected ChannelUnavailableError", err, err)
	}
	if cue.Channel != 3 {
		t.Errorf("error names channel %d", cue.Channel)
	}
}

func TestLockedAWGRejectsSetters(t *testing.T) {
	awg, fake := testAWG(nil)
	awg.locks.lock(GenA, "a test")
	for name, call := range map[string]func() error{
		"Start":          awg.Start,
		"Stop":           awg.Stop,
		"SetMemorySize":  func() error { return awg.SetMemorySize(100) },
		"SetCycles":      func() error { return awg.SetCycles(1) },
		"SetTriggerMode": func() error { return awg.SetTriggerMode(TriggerDisabled) },
		"SetClockPeriod": func() error { return awg.SetClockPeriod(1000) },
		"SetWaveform":    func() error { return awg.SetWaveform([]float64{0}) },
		"SetAutoStart":   func() error { return awg.SetAutoStart(true) },
	} {
		err := call()
		if _, ok := err.(LockedError); !ok {
			t.Errorf("%s returned %v, expected LockedError", name, err)
		}
	}
	if len(fake.cmds) != 0 {
		t.Errorf("locked AWG still reached the device: %v", fake.cmds)
	}
}

func TestClockPeriodChecksSiblingLock(t *testing.T) {
	awg, fake := testAWG(nil)
	awg.locks.lock(GenB, "a test")
	err := awg.SetClockPeriod(1000)
	if _, ok := err.(LockedError); !ok {
		t.Fatalf("got %T (%v), expected LockedError", err, err)
	}
	if len(fake.cmds) != 0 {
		t.Errorf("device was touched: %v", fake.cmds)
	}
}

func TestSetMemorySizeRange(t *testing.T) {
	awg, _ := testAWG(nil)
	for _, size := range []int{1, 0, -5, MaxMemorySize + 1} {
		if _, ok := awg.SetMemorySize(size).(RangeError); !ok {
			t.Errorf("SetMemorySize(%d) did not return a RangeError", size)
		}
	}
}
