// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/pkg/fets"
)

var (
	fetDevice  string
	fetAddress string
	fetOutput  string
	fetInput   string
	fetBound   bool
	stateWait  time.Duration
)

var fetCmd = &cobra.Command{
	Use:   "fet",
	Short: "Drive a FET driver module",
	Long: `Send commands to a FET driver module and read its telemetry.

Ports are given as Out1..Out7 and In1..In7. In module style every command
names its ports with --output/--input. With --bound (or a profile entry that
sets output) the instance is fixed to those ports and the flags may be
omitted.

Out7 is digital only: pwm and wave reject it.`,
}

var fetWriteCmd = &cobra.Command{
	Use:   "write <0|1>",
	Short: "Set a digital output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}
		return withFET(func(f *fets.Fets, out, in fets.Port) error {
			return f.Write(value, out)
		})
	},
}

var fetPWMCmd = &cobra.Command{
	Use:   "pwm <duty>",
	Short: "Set a PWM duty cycle (0..1, or 0%..100%)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duty, err := parseDuty(args[0])
		if err != nil {
			return err
		}
		return withFET(func(f *fets.Fets, out, in fets.Port) error {
			return f.WritePWM(duty, out)
		})
	},
}

var fetWaveCmd = &cobra.Command{
	Use:   "wave <square|sine|triangular|sawtooth|inv-sawtooth> <period-ms>",
	Short: "Start a waveform on an output",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := fets.ParseWaveform(args[0])
		if err != nil {
			return err
		}
		period, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid period %q: %w", args[1], err)
		}
		return withFET(func(f *fets.Fets, out, in fets.Port) error {
			return f.WriteWave(form, period, out)
		})
	},
}

var fetRespondCmd = &cobra.Command{
	Use:   "respond <act-in> <act-out>",
	Short: "Make an output follow an input while the condition holds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSensor(args, (*fets.Fets).SensorRespond)
	},
}

var fetTriggerCmd = &cobra.Command{
	Use:   "trigger <act-in> <act-out>",
	Short: "Latch an output the first time an input condition holds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSensor(args, (*fets.Fets).SensorTrigger)
	},
}

var fetStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read output and input state from telemetry",
	Long: `Poll the bus for telemetry and print the decoded state.

With --output or --input the single port bit is printed, otherwise the full
7-bit fields. --wait keeps polling until a frame is decoded or the time runs
out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFET(func(f *fets.Fets, out, in fets.Port) error {
			deadline := time.Now().Add(stateWait)
			for {
				if _, err := f.RecvData(); err != nil {
					return err
				}
				stats := f.Stats()
				if stats.Locked() || !time.Now().Before(deadline) {
					break
				}
				time.Sleep(time.Millisecond)
			}

			stats := f.Stats()
			if !stats.Locked() {
				log.Warn("no telemetry decoded, showing zero state")
			}

			outState, err := f.OutputState(out)
			if err != nil {
				return err
			}
			inState, err := f.InputState(in)
			if err != nil {
				return err
			}
			fmt.Printf("Address: 0x%02X  %s\n", f.Address(), fets.FormatTelemetry(f.Telemetry()))
			if resolved, _ := f.BoundPorts(); out != fets.None || resolved != fets.None {
				fmt.Printf("Output %v: %d\n", pick(out, resolved), outState)
			}
			if _, resolved := f.BoundPorts(); in != fets.None || resolved != fets.None {
				fmt.Printf("Input %v: %d\n", pick(in, resolved), inState)
			}
			fmt.Printf("Drained %d bytes, %d frames matched\n", stats.BytesDrained, stats.FramesMatched)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(fetCmd)

	fetCmd.PersistentFlags().StringVarP(&fetDevice, "device", "d", "", "FET entry name from the profile")
	fetCmd.PersistentFlags().StringVarP(&fetAddress, "address", "a", "0x90", "Module address byte")
	fetCmd.PersistentFlags().StringVarP(&fetOutput, "output", "o", "", "Output port (Out1..Out7)")
	fetCmd.PersistentFlags().StringVarP(&fetInput, "input", "i", "", "Input port (In1..In7)")
	fetCmd.PersistentFlags().BoolVar(&fetBound, "bound", false, "Bind the instance to --output/--input")

	fetStateCmd.Flags().DurationVar(&stateWait, "wait", 100*time.Millisecond, "How long to poll for telemetry")

	fetCmd.AddCommand(fetWriteCmd, fetPWMCmd, fetWaveCmd, fetRespondCmd, fetTriggerCmd, fetStateCmd)
}

// fetTarget is the resolved instance a command talks to
type fetTarget struct {
	name    string
	address byte
	output  fets.Port
	input   fets.Port
}

// fetTargets lists the profile entries (or the flag-described instance)
// and the index of the one selected by --device. An explicit --address
// bypasses the profile entries.
func fetTargets(addressSet bool) ([]fetTarget, int, error) {
	if hasProfile && len(profile.FETs) > 0 && !addressSet {
		want := profile.FETs[0].Name
		if fetDevice != "" {
			entry, ok := profile.FET(fetDevice)
			if !ok {
				return nil, 0, fmt.Errorf("no fet named %q in %s", fetDevice, configPath)
			}
			want = entry.Name
		}

		targets := make([]fetTarget, 0, len(profile.FETs))
		selected := 0
		for i, entry := range profile.FETs {
			out, in, err := entry.Ports()
			if err != nil {
				return nil, 0, fmt.Errorf("fet %q: %w", entry.Name, err)
			}
			targets = append(targets, fetTarget{name: entry.Name, address: byte(entry.Address), output: out, input: in})
			if entry.Name == want {
				selected = i
			}
		}
		return targets, selected, nil
	}

	if fetDevice != "" {
		return nil, 0, fmt.Errorf("--device needs a profile (--config)")
	}
	address, err := parseAddress(fetAddress)
	if err != nil {
		return nil, 0, err
	}
	target := fetTarget{name: "fet", address: address}
	if fetBound {
		out, in, err := flagPorts()
		if err != nil {
			return nil, 0, err
		}
		if out == fets.None {
			return nil, 0, fmt.Errorf("--bound needs --output")
		}
		target.output, target.input = out, in
	}
	return []fetTarget{target}, 0, nil
}

// withFET opens the bus, builds every configured instance on one registry
// and runs fn on the selected one with the per-call ports from the flags.
func withFET(fn func(f *fets.Fets, out, in fets.Port) error) error {
	targets, selected, err := fetTargets(fetCmd.PersistentFlags().Changed("address"))
	if err != nil {
		return err
	}
	out, in, err := flagPorts()
	if err != nil {
		return err
	}

	bus, err := OpenConnection(targets[selected].address)
	if err != nil {
		return err
	}
	defer bus.Close()
	log.Debugf("connected: %s", bus.Info())

	registry := fets.NewRegistry()
	instances := make([]*fets.Fets, len(targets))
	for i, t := range targets {
		instances[i] = fets.New(registry, bus, t.address, t.output, t.input)
	}
	if registry.Conflicted() {
		log.Warn("profile mixes module style and bound ports, commands will be rejected")
	}

	target := targets[selected]
	log.WithFields(log.Fields{
		"fet":     target.name,
		"address": fmt.Sprintf("0x%02X", target.address),
		"mode":    registry.Mode(),
	}).Debug("instance ready")

	err = fn(instances[selected], out, in)
	flushDryRun(bus, fets.FrameSize, func(p []byte) string {
		var f fets.Frame
		copy(f[:], p)
		return fets.FormatFrame(f)
	})
	return err
}

func runSensor(args []string, call func(*fets.Fets, bool, bool, fets.Port, fets.Port) (bool, error)) error {
	actIn, err := strconv.ParseBool(args[0])
	if err != nil {
		return fmt.Errorf("invalid act-in %q: %w", args[0], err)
	}
	actOut, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid act-out %q: %w", args[1], err)
	}
	return withFET(func(f *fets.Fets, out, in fets.Port) error {
		matched, err := call(f, actIn, actOut, out, in)
		if err != nil {
			return err
		}
		fmt.Printf("Output already at act-out: %v\n", matched)
		return nil
	})
}

func flagPorts() (out, in fets.Port, err error) {
	if out, err = fets.ParsePort(fetOutput); err != nil {
		return fets.None, fets.None, err
	}
	if in, err = fets.ParsePort(fetInput); err != nil {
		return fets.None, fets.None, err
	}
	return out, in, nil
}

// parseAddress accepts decimal, 0x hex or 0b binary
func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return byte(v), nil
}

// parseDuty accepts a fraction or a percentage
func parseDuty(s string) (float64, error) {
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s, scale = strings.TrimSuffix(s, "%"), 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duty %q: %w", s, err)
	}
	return v / scale, nil
}

func pick(requested, bound fets.Port) fets.Port {
	if requested != fets.None {
		return requested
	}
	return bound
}
