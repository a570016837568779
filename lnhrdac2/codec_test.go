package lnhrdac2

import "testing"

func TestVoltageCodeRoundTrip(t *testing.T) {
	for _, v := range []float64{-10.0, -5.4321, 0.0, 1e-6, 2.5, 9.999999, 10.0} {
		code, err := VoltageToCode(v)
		if err != nil {
			t.Fatalf("VoltageToCode(%v) errored: %v", v, err)
		}
		got := CodeToVoltage(code)
		if got != v {
			t.Errorf("round trip of %v came back as %v", v, got)
		}
	}
}

func TestVoltageToCodeBounds(t *testing.T) {
	code, err := VoltageToCode(10.0)
	if err != nil {
		t.Fatal(err)
	}
	if code != MaxCode-1 && code != MaxCode {
		t.Errorf("+10 V mapped to %#x, expected the top of the 24-bit range", code)
	}
	code, err = VoltageToCode(-10.0)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Errorf("-10 V mapped to %#x, expected 0", code)
	}
}

func TestVoltageToCodeRejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{-10.001, 10.001, 50.0} {
		if _, err := VoltageToCode(v); err == nil {
			t.Errorf("VoltageToCode(%v) did not error", v)
		} else if _, ok := err.(RangeError); !ok {
			t.Errorf("VoltageToCode(%v) returned %T, expected RangeError", v, err)
		}
	}
}

func TestCodeToVoltageMidscale(t *testing.T) {
	// midscale is 0 V by construction of the transfer function
	if v := CodeToVoltage(8388607); v != 0.0 {
		t.Errorf("midscale code mapped to %v V, expected 0", v)
	}
}
