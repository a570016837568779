package lnhrdac2

// Channel is one physical DAC output.  Voltages pass through the
// fixed-point codec on the way in and out; raw codes are available on
// the Controller for callers that need bit-exact access.
type Channel struct {
	ctl *Controller

	// Number is the 1-based channel number printed on the front panel.
	Number int
}

// Voltage reads the present output voltage.
func (ch *Channel) Voltage() (float64, error) {
	code, err := ch.ctl.ChannelCode(ch.Number)
	if err != nil {
		return 0, err
	}
	return CodeToVoltage(code), nil
}

// SetVoltage sets the output voltage, +/- 10 V.
func (ch *Channel) SetVoltage(v float64) error {
	code, err := VoltageToCode(v)
	if err != nil {
		return err
	}
	return ch.ctl.SetChannelCode(ch.Number, code)
}

// RegisteredVoltage reads the registered voltage, i.e. the value that
// will appear at the output on the next synchronous update.
func (ch *Channel) RegisteredVoltage() (float64, error) {
	code, err := ch.ctl.RegisteredCode(ch.Number)
	if err != nil {
		return 0, err
	}
	return CodeToVoltage(code), nil
}

// Enabled reads whether the output relay is on.
func (ch *Channel) Enabled() (bool, error) {
	s, err := ch.ctl.ChannelStatus(ch.Number)
	return s == "ON", err
}

// SetEnabled switches the output relay.
func (ch *Channel) SetEnabled(on bool) error {
	return ch.ctl.SetChannelStatus(ch.Number, onOff(on))
}

// HighBandwidth reads whether the output filter is in 100 kHz (true)
// or 100 Hz (false) mode.
func (ch *Channel) HighBandwidth() (bool, error) {
	bw, err := ch.ctl.ChannelBandwidth(ch.Number)
	return bw == "HBW", err
}

// SetHighBandwidth selects the 100 kHz (true) or 100 Hz (false) output
// filter.
func (ch *Channel) SetHighBandwidth(high bool) error {
	bw := "LBW"
	if high {
		bw = "HBW"
	}
	return ch.ctl.SetChannelBandwidth(ch.Number, bw)
}

// Mode reads what is driving the channel: "DAC", "SYN", "RMP", "AWG",
// "---" (off) or "ERR".
func (ch *Channel) Mode() (string, error) {
	return ch.ctl.ChannelMode(ch.Number)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// ChannelGroup addresses every channel of the device in one command
// where the firmware supports it.
type ChannelGroup struct {
	ctl *Controller
}

// Voltages reads the present output voltage of every channel.
func (g *ChannelGroup) Voltages() ([]float64, error) {
	codes, err := g.ctl.AllCodes()
	if err != nil {
		return nil, err
	}
	return codesToVoltages(codes), nil
}

// SetVoltage sets every channel to the same voltage simultaneously.
func (g *ChannelGroup) SetVoltage(v float64) error {
	code, err := VoltageToCode(v)
	if err != nil {
		return err
	}
	return g.ctl.SetAllCodes(code)
}

// RegisteredVoltages reads the registered voltage of every channel.
func (g *ChannelGroup) RegisteredVoltages() ([]float64, error) {
	codes, err := g.ctl.AllRegisteredCodes()
	if err != nil {
		return nil, err
	}
	return codesToVoltages(codes), nil
}

// SetEnabled switches all output relays at once.
func (g *ChannelGroup) SetEnabled(on bool) error {
	return g.ctl.SetAllStatus(onOff(on))
}

// Enabled reads the relay state of every channel.
func (g *ChannelGroup) Enabled() ([]bool, error) {
	raw, err := g.ctl.AllStatus()
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, s := range raw {
		out[i] = s == "ON"
	}
	return out, nil
}

// SetHighBandwidth selects the output filter of every channel at once.
func (g *ChannelGroup) SetHighBandwidth(high bool) error {
	bw := "LBW"
	if high {
		bw = "HBW"
	}
	return g.ctl.SetAllBandwidth(bw)
}

// Modes reads what is driving each channel.
func (g *ChannelGroup) Modes() ([]string, error) {
	return g.ctl.AllModes()
}

func codesToVoltages(codes []int) []float64 {
	out := make([]float64, len(codes))
	for i, c := range codes {
		out[i] = CodeToVoltage(c)
	}
	return out
}
