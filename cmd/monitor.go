// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/internal/capture"
	"github.com/YukiHonma/sakura/internal/sim"
	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

var (
	monitorPeriod time.Duration
	monitorRecord string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live FET telemetry monitor",
	Long: `Poll one FET module every period and show its output and input state.

Type commands at the prompt (write, pwm, wave, respond, trigger, xy, polar,
stop) to drive the bus while watching the result. With --sim the keys 1-7
toggle the simulated inputs.

With --record every telemetry change is appended to a CBOR capture file that
replay can print later.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVarP(&fetDevice, "device", "d", "", "FET entry name from the profile")
	monitorCmd.Flags().StringVarP(&fetAddress, "address", "a", "0x90", "Module address byte")
	monitorCmd.Flags().DurationVar(&monitorPeriod, "period", 10*time.Millisecond, "Polling period")
	monitorCmd.Flags().StringVar(&monitorRecord, "record", "", "Append telemetry changes to a CBOR capture file")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if dryRun {
		return fmt.Errorf("monitor needs a live bus (--port, --url or --sim)")
	}
	if hasProfile {
		if !cmd.Flags().Changed("period") {
			monitorPeriod = profile.Monitor.Period.Duration
		}
		if !cmd.Flags().Changed("record") {
			monitorRecord = profile.Monitor.Record
		}
	}
	if monitorPeriod <= 0 {
		return fmt.Errorf("invalid --period %v", monitorPeriod)
	}

	targets, selected, err := fetTargets(cmd.Flags().Changed("address"))
	if err != nil {
		return err
	}
	target := targets[selected]

	bus, err := OpenConnection(target.address)
	if err != nil {
		return err
	}
	defer bus.Close()

	var recorder *capture.Writer
	if monitorRecord != "" {
		file, err := os.OpenFile(monitorRecord, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open capture: %w", err)
		}
		defer file.Close()
		recorder = capture.NewWriter(file)
	}

	budget := fets.CallBudget(baudRate, monitorPeriod)
	log.WithFields(log.Fields{
		"connection": bus.Info(),
		"period":     monitorPeriod,
		"budget":     budget,
	}).Debug("starting monitor")

	registry := fets.NewRegistry()
	m := initialMonitorModel(monitorSession{
		name:     target.name,
		connInfo: bus.Info(),
		fet:      fets.New(registry, bus, target.address, target.output, target.input),
		chassis:  underbody.New(bus),
		period:   monitorPeriod,
		budget:   budget,
		recorder: recorder,
	})
	if bench, ok := bus.(*sim.Bench); ok {
		m.session.bench = bench
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(monitorModel); ok {
		if recorder != nil {
			fmt.Printf("Recorded %d telemetry changes to %s\n", recorder.Count(), monitorRecord)
		}
		if fm.err != nil {
			return fm.err
		}
	}
	return nil
}
