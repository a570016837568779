package lnhrdac2

import (
	"strings"
	"testing"
)

func modesReply(n int) string {
	modes := make([]string, n)
	for i := range modes {
		modes[i] = "---"
	}
	return strings.Join(modes, ";")
}

func TestNewWithConnDiscoversChannelCount(t *testing.T) {
	for _, n := range []int{12, 24} {
		fake := newFakeDAC(map[string]string{"all m?": modesReply(n)})
		d, err := NewWithConn(fake)
		if err != nil {
			t.Fatalf("%d channels: %v", n, err)
		}
		if d.NumChannels != n {
			t.Errorf("discovered %d channels, expected %d", d.NumChannels, n)
		}
		if len(d.Channels) != n {
			t.Errorf("built %d channel handles", len(d.Channels))
		}
		wantGens := 2
		if n == 24 {
			wantGens = 4
		}
		if len(d.AWGs) != wantGens || len(d.Ramps) != wantGens {
			t.Errorf("built %d AWGs and %d ramps for %d channels",
				len(d.AWGs), len(d.Ramps), n)
		}
	}
}

func TestNewWithConnRejectsOddChannelCount(t *testing.T) {
	fake := newFakeDAC(map[string]string{"all m?": modesReply(16)})
	if _, err := NewWithConn(fake); err == nil {
		t.Fatal("expected an error for a 16 channel reply")
	}
}

func TestChannelAccessor(t *testing.T) {
	fake := newFakeDAC(map[string]string{"all m?": modesReply(12)})
	d, err := NewWithConn(fake)
	if err != nil {
		t.Fatal(err)
	}
	if ch := d.Channel(1); ch == nil || ch.Number != 1 {
		t.Error("channel 1 lookup failed")
	}
	if ch := d.Channel(12); ch == nil || ch.Number != 12 {
		t.Error("channel 12 lookup failed")
	}
	if d.Channel(0) != nil || d.Channel(13) != nil {
		t.Error("out-of-range channels did not return nil")
	}
}

func TestAWGAccessorIsCaseInsensitive(t *testing.T) {
	fake := newFakeDAC(map[string]string{"all m?": modesReply(12)})
	d, err := NewWithConn(fake)
	if err != nil {
		t.Fatal(err)
	}
	if d.AWG("a") == nil || d.AWG("A") == nil {
		t.Error("generator A lookup failed")
	}
	if d.AWG("a") != d.AWGs[GenA] {
		t.Error("lowercase lookup returned a different generator")
	}
	// C and D only exist on 24 channel units
	if d.AWG("c") != nil {
		t.Error("generator C should not exist on a 12 channel unit")
	}
}

func TestIDNExtractsBannerFields(t *testing.T) {
	// the banners have a fixed-position layout
	hard := "Hardware Revision: 2.1.0, SerialNo: LNHRDACII-0042 (24 channels)"
	soft := "Software Version: 1.5.2 (2024-03) Rev B"
	fake := newFakeDAC(map[string]string{
		"all m?": modesReply(24),
		"hard?":  hard,
		"soft?":  soft,
	})
	d, err := NewWithConn(fake)
	if err != nil {
		t.Fatal(err)
	}
	idn, err := d.IDN()
	if err != nil {
		t.Fatal(err)
	}
	if idn.Serial != strings.TrimSpace(hard[37:51]) {
		t.Errorf("serial is %q, expected %q", idn.Serial, hard[37:51])
	}
	if idn.Firmware != strings.TrimSpace(soft[18:33]) {
		t.Errorf("firmware is %q, expected %q", idn.Firmware, soft[18:33])
	}
	if !strings.Contains(idn.Model, "24 channel") {
		t.Errorf("model is %q", idn.Model)
	}
}

func TestChannelVoltageRoundTrip(t *testing.T) {
	fake := newFakeDAC(map[string]string{
		"all m?": modesReply(12),
		"3 v?":   "FFFFFF",
	})
	d, err := NewWithConn(fake)
	if err != nil {
		t.Fatal(err)
	}
	ch := d.Channel(3)
	if err := ch.SetVoltage(10.0); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("3 ffffff") {
		t.Errorf("voltage set serialized as %v", fake.cmds)
	}
	v, err := ch.Voltage()
	if err != nil {
		t.Fatal(err)
	}
	if v != 10.0 {
		t.Errorf("read back %v V", v)
	}
}

func TestChannelEnableAndBandwidth(t *testing.T) {
	fake := newFakeDAC(map[string]string{
		"all m?": modesReply(12),
		"5 s?":   "ON",
		"5 bw?":  "HBW",
	})
	d, err := NewWithConn(fake)
	if err != nil {
		t.Fatal(err)
	}
	ch := d.Channel(5)
	if err := ch.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("5 ON") {
		t.Errorf("enable serialized as %v", fake.cmds)
	}
	on, err := ch.Enabled()
	if err != nil || !on {
		t.Errorf("Enabled() = %v, %v", on, err)
	}
	if err := ch.SetHighBandwidth(true); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("5 HBW") {
		t.Errorf("bandwidth serialized as %v", fake.cmds)
	}
	high, err := ch.HighBandwidth()
	if err != nil || !high {
		t.Errorf("HighBandwidth() = %v, %v", high, err)
	}
}
