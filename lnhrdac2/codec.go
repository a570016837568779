package lnhrdac2

import "math"

// codesPerVolt is the fixed-point scale of the 24-bit DAC: the full
// 0..0xFFFFFF range spans -10 V..+10 V, about 1.192 uV per LSB.
const codesPerVolt = 838860.74

// MaxCode is the largest internal DAC value (24 bit).
const MaxCode = 0xFFFFFF

// VoltageToCode converts a voltage into the internal fixed-point value
// used in the device memories.  Voltages outside +/- 10 V are rejected
// before they ever reach the wire.
func VoltageToCode(v float64) (int, error) {
	if v < -10.0 || v > 10.0 {
		return 0, RangeError{Field: "voltage", Value: v, Min: -10.0, Max: 10.0}
	}
	return int(math.Round((v + 10.0) * codesPerVolt)), nil
}

// CodeToVoltage converts an internal fixed-point value back into a
// voltage, rounded to 1 uV for display stability.
func CodeToVoltage(code int) float64 {
	return round6(float64(code)/codesPerVolt - 10.0)
}

// round6 rounds to six decimals (1 uV).
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
