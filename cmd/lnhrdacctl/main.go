// Command lnhrdacctl is a bench tool for the LNHR DAC II: set and read
// channels, drive the waveform generators and run 2D scans from the
// shell, without standing up the HTTP server.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/theckman/yacspin"

	"github.com/baspi-lab/lnhrdac2/lnhrdac2"
)

var (
	addr   string
	serial bool
)

func connect() (*lnhrdac2.Device, error) {
	return lnhrdac2.New(addr, serial)
}

func spinner(suffix string) (*yacspin.Spinner, error) {
	s, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[14],
		Suffix:          " " + suffix,
		SuffixAutoColon: true,
		StopCharacter:   "done",
	})
	if err != nil {
		return nil, err
	}
	return s, s.Start()
}

func newIDNCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "idn",
		Short: "Identify the connected instrument",
		RunE: func(cmd *cobra.Command, args []string) error {
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			idn, err := dac.IDN()
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\nserial: %s\nfirmware: %s\n",
				idn.Vendor, idn.Model, idn.Serial, idn.Firmware)
			return nil
		},
	}
}

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Read temperature, load and supply status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			h, err := dac.Health()
			if err != nil {
				return err
			}
			fmt.Println(h)
			return nil
		},
	}
}

func newVoltageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voltage <channel> [volts]",
		Short: "Read or set a channel voltage",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("channel must be an integer: %w", err)
			}
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			ch := dac.Channel(num)
			if ch == nil {
				return fmt.Errorf("channel %d does not exist on this %d channel device",
					num, dac.NumChannels)
			}
			if len(args) == 1 {
				v, err := ch.Voltage()
				if err != nil {
					return err
				}
				fmt.Printf("%.6f\n", v)
				return nil
			}
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("volts must be a number: %w", err)
			}
			return ch.SetVoltage(v)
		},
	}
}

func newEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <channel|all> <on|off>",
		Short: "Switch a channel output relay",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[1] {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("second argument must be on or off, got %q", args[1])
			}
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			if args[0] == "all" {
				return dac.All.SetEnabled(on)
			}
			num, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("channel must be an integer or \"all\": %w", err)
			}
			ch := dac.Channel(num)
			if ch == nil {
				return fmt.Errorf("channel %d does not exist on this %d channel device",
					num, dac.NumChannels)
			}
			return ch.SetEnabled(on)
		},
	}
}

func newRawCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "raw <command>",
		Short: "Send one raw protocol line and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			resp, err := dac.Controller().Ask(args[0])
			if err != nil {
				return err
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func newSWGCommand() *cobra.Command {
	cfg := lnhrdac2.DefaultSWGConfig()
	var target string
	cmd := &cobra.Command{
		Use:   "swg",
		Short: "Synthesize a standard waveform into an AWG",
		RunE: func(cmd *cobra.Command, args []string) error {
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			awg := dac.AWG(target)
			if awg == nil {
				return fmt.Errorf("AWG %q does not exist on this device", target)
			}
			if err := dac.SWG.Configure(cfg); err != nil {
				return err
			}
			return dac.SWG.Apply(awg)
		},
	}
	cmd.Flags().StringVar(&target, "awg", "A", "target AWG (A-D)")
	cmd.Flags().StringVar(&cfg.Shape, "shape", cfg.Shape, "waveform shape")
	cmd.Flags().Float64Var(&cfg.Frequency, "frequency", cfg.Frequency, "frequency in Hz")
	cmd.Flags().Float64Var(&cfg.Amplitude, "amplitude", cfg.Amplitude, "amplitude in V")
	cmd.Flags().Float64Var(&cfg.Offset, "offset", cfg.Offset, "DC offset in V")
	cmd.Flags().Float64Var(&cfg.Phase, "phase", cfg.Phase, "phase in degrees")
	cmd.Flags().Float64Var(&cfg.DutyCycle, "duty-cycle", cfg.DutyCycle, "duty cycle in percent (pulse only)")
	return cmd
}

func newScanCommand() *cobra.Command {
	cfg := lnhrdac2.DefaultScan2DConfig()
	var trigger string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Configure and run a 2D scan, waiting for completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			dac, err := connect()
			if err != nil {
				return err
			}
			defer dac.Close()
			if err := dac.Scan.Configure(cfg); err != nil {
				return err
			}
			if trigger != lnhrdac2.ScanTriggerDisable {
				if err := dac.Scan.SetTrigger(trigger); err != nil {
					return err
				}
			}
			if err := dac.Scan.Enable(true); err != nil {
				return err
			}
			spin, err := spinner("scanning")
			if err != nil {
				return err
			}
			for {
				steps, finished, err := dac.Scan.Progress()
				if err != nil {
					spin.StopFail()
					return err
				}
				if finished {
					break
				}
				spin.Message(fmt.Sprintf("%d of %d x steps", steps, cfg.XSteps))
				time.Sleep(time.Second)
			}
			spin.Stop()
			return dac.Scan.Enable(false)
		},
	}
	cmd.Flags().IntVar(&cfg.XChannel, "x-channel", cfg.XChannel, "x axis channel")
	cmd.Flags().Float64Var(&cfg.XStart, "x-start", cfg.XStart, "x start voltage")
	cmd.Flags().Float64Var(&cfg.XStop, "x-stop", cfg.XStop, "x stop voltage")
	cmd.Flags().IntVar(&cfg.XSteps, "x-steps", cfg.XSteps, "x step count")
	cmd.Flags().IntVar(&cfg.YChannel, "y-channel", cfg.YChannel, "y axis channel")
	cmd.Flags().Float64Var(&cfg.YStart, "y-start", cfg.YStart, "y start voltage")
	cmd.Flags().Float64Var(&cfg.YStop, "y-stop", cfg.YStop, "y stop voltage")
	cmd.Flags().IntVar(&cfg.YSteps, "y-steps", cfg.YSteps, "y step count")
	cmd.Flags().Float64Var(&cfg.AcquisitionDelay, "acquisition-delay", cfg.AcquisitionDelay, "seconds per y step")
	cmd.Flags().Float64Var(&cfg.AdaptiveShift, "adaptive-shift", cfg.AdaptiveShift, "y shift per x step in V")
	cmd.Flags().StringVar(&trigger, "trigger", lnhrdac2.ScanTriggerDisable,
		"trigger mode: disable, line in, line out, point out")
	return cmd
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lnhrdacctl",
		Short:         "Bench tool for the Basel Precision Instruments LNHR DAC II",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "192.168.0.5:23", "instrument address (host:port or serial device)")
	cmd.PersistentFlags().BoolVar(&serial, "serial", false, "use RS-232 instead of the Telnet socket")
	cmd.AddCommand(newIDNCommand())
	cmd.AddCommand(newHealthCommand())
	cmd.AddCommand(newVoltageCommand())
	cmd.AddCommand(newEnableCommand())
	cmd.AddCommand(newRawCommand())
	cmd.AddCommand(newSWGCommand())
	cmd.AddCommand(newScanCommand())
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
