package lnhrdac2

import "testing"

func testSWG(replies map[string]string) (*SWG, *AWG, *fakeDAC) {
	ctl, fake, _ := testController(replies)
	swg := newSWG(ctl)
	swg.Logger = nil
	awg := newAWG(ctl, newLockTable(), GenA)
	awg.Mem.CommitPollInterval = 0
	return swg, awg, fake
}

func TestConfigureSerializesShape(t *testing.T) {
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "sawtooth"
	if err := swg.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"C SWG MODE 1",
		"C SWG ACLK 1",
		"C SWG WF 2",
		"C SWG DF 100",
		"C SWG AMP 0.500000",
		"C SWG DCV 0.000000",
		"C SWG PHA 0.0000",
	} {
		if !fake.sent(want) {
			t.Errorf("%q was not sent; commands: %v", want, fake.cmds)
		}
	}
}

func TestConfigureCosineShiftsPhase(t *testing.T) {
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "cosine"
	cfg.Phase = 10.0
	if err := swg.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG WF 0") {
		t.Error("cosine did not map to the sine family")
	}
	if !fake.sent("C SWG PHA 100.0000") {
		t.Errorf("cosine phase was not shifted by 90 degrees; commands: %v", fake.cmds)
	}
}

func TestConfigureRectanglePinsDutyCycle(t *testing.T) {
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "rectangle"
	cfg.DutyCycle = 80.0 // ignored for rectangle
	if err := swg.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG DUC 50.000") {
		t.Errorf("rectangle duty cycle was not pinned to 50%%; commands: %v", fake.cmds)
	}
}

func TestConfigurePulseKeepsDutyCycle(t *testing.T) {
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "pulse"
	cfg.DutyCycle = 12.5
	if err := swg.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG DUC 12.500") {
		t.Errorf("pulse duty cycle was not forwarded; commands: %v", fake.cmds)
	}
}

func TestConfigureAcceptsAmplitudeBeyondOutputRange(t *testing.T) {
	// noise amplitudes are RMS values and may exceed the +/- 10 V
	// output span; the generator accepts up to +/- 50 V
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "random noise"
	cfg.Amplitude = 20.0
	if err := swg.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG AMP 20.000000") {
		t.Errorf("amplitude was not forwarded; commands: %v", fake.cmds)
	}

	cfg.Amplitude = 50.001
	if _, ok := swg.Configure(cfg).(RangeError); !ok {
		t.Error("amplitude beyond 50 V was not rejected")
	}
}

func TestConfigureRejectsUnknownShape(t *testing.T) {
	swg, _, fake := testSWG(nil)
	cfg := DefaultSWGConfig()
	cfg.Shape = "square"
	err := swg.Configure(cfg)
	if _, ok := err.(ChoiceError); !ok {
		t.Fatalf("got %T (%v), expected ChoiceError", err, err)
	}
	if len(fake.cmds) != 0 {
		t.Errorf("device was touched before validation: %v", fake.cmds)
	}
}

func TestApplyKeepsClockWhenSiblingInUse(t *testing.T) {
	swg, awg, fake := testSWG(map[string]string{
		"C AWG-B MS?":   "100", // sibling holds a waveform
		"C SWG DF?":     "100",
		"C SWG NF?":     "100",
		"C WAV-A BUSY?": "0",
	})
	if err := swg.Apply(awg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG ACLK 0") {
		t.Errorf("clock was not kept; commands: %v", fake.cmds)
	}
	if !fake.sent("C SWG APPLY") || !fake.sent("C WAV-A WRITE") {
		t.Errorf("waveform was not applied and committed; commands: %v", fake.cmds)
	}
}

func TestApplyAdaptsClockWhenSiblingEmpty(t *testing.T) {
	swg, awg, fake := testSWG(map[string]string{
		"C AWG-B MS?":   "2",
		"C SWG DF?":     "100",
		"C SWG NF?":     "100",
		"C WAV-A BUSY?": "0",
	})
	if err := swg.Apply(awg); err != nil {
		t.Fatal(err)
	}
	if !fake.sent("C SWG ACLK 1") {
		t.Errorf("clock was not adapted; commands: %v", fake.cmds)
	}
}
