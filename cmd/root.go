// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/internal/config"
	"github.com/YukiHonma/sakura/pkg/transport"
)

var (
	// Serial connection flags
	portName string
	baudRate int
	pollTime string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Run mode flags
	configPath string
	verbose    bool
	dryRun     bool
	simulate   bool

	// Loaded profile (defaults when --config is not given)
	profile    = config.Default()
	hasProfile bool
)

var rootCmd = &cobra.Command{
	Use:   "sakuractl",
	Short: "Drive FET and chassis modules over a serial bus",
	Long: `sakuractl - command line host for the FET driver and omnidirectional chassis
modules sharing one serial line.

Every command is fire-and-forget: frames are written and nothing is
acknowledged. Telemetry is read only when a command asks for it.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Simulator: --sim
  Dry run:   --dry-run (print frames, send nothing)

For WebSocket authentication, the password is read from the SAKURA_PASSWORD
environment variable, or prompted interactively if not set.

A TOML profile (--config) can name the connection and the FET modules on the
bus; flags given on the command line override it.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", transport.DefaultBaudRate, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVar(&pollTime, "poll", transport.DefaultPollTimeout.String(), "Serial read timeout for one poll")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML profile describing the bus")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print frames instead of sending them")
	rootCmd.PersistentFlags().BoolVar(&simulate, "sim", false, "Talk to a simulated FET module")
}

// setup configures logging and merges the profile with the flags
func setup(cmd *cobra.Command, args []string) error {
	configureLogging(verbose)

	if configPath == "" {
		return nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	profile, hasProfile = cfg, true

	flags := cmd.Flags()
	if !flags.Changed("port") && !flags.Changed("url") {
		portName, wsURL = cfg.Connection.Port, cfg.Connection.URL
	}
	if !flags.Changed("baud") {
		baudRate = cfg.Connection.Baud
	}
	if !flags.Changed("poll") {
		pollTime = cfg.Connection.Poll.String()
	}
	if !flags.Changed("username") {
		wsUsername = cfg.Connection.Username
	}
	if !flags.Changed("no-ssl-verify") {
		wsNoSSLVerify = cfg.Connection.NoSSLVerify
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
