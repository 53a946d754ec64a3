// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

var chassisSI bool

var chassisCmd = &cobra.Command{
	Use:   "chassis",
	Short: "Drive the omnidirectional chassis",
	Long: `Send movement commands to the chassis controller.

Velocities are in mm/s and angles in degrees. With --si they are m/s and
radians instead. The chassis never answers; every command is one 8-byte frame.

Limits: |vx|, |vy|, speed <= 8000 mm/s, |omega| <= 500 deg/s.`,
}

var chassisXYCmd = &cobra.Command{
	Use:   "xy <vx> <vy> <omega>",
	Short: "Move with cartesian velocity and rotation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chassisSI {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			return withChassis(func(u *underbody.UnderBody) error {
				return u.MoveXYSI(v[0], v[1], v[2])
			})
		}
		v, err := parseInts(args)
		if err != nil {
			return err
		}
		return withChassis(func(u *underbody.UnderBody) error {
			return u.MoveXY(v[0], v[1], v[2])
		})
	},
}

var chassisPolarCmd = &cobra.Command{
	Use:   "polar <speed> <direction> <omega>",
	Short: "Move with speed, heading and rotation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if chassisSI {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			return withChassis(func(u *underbody.UnderBody) error {
				return u.MovePolarSI(v[0], v[1], v[2])
			})
		}
		v, err := parseInts(args)
		if err != nil {
			return err
		}
		return withChassis(func(u *underbody.UnderBody) error {
			return u.MovePolar(v[0], v[1], v[2])
		})
	},
}

var chassisStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop all motion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChassis(func(u *underbody.UnderBody) error {
			return u.Stop()
		})
	},
}

func init() {
	rootCmd.AddCommand(chassisCmd)
	chassisCmd.PersistentFlags().BoolVar(&chassisSI, "si", false, "Arguments are m/s and radians")
	chassisCmd.AddCommand(chassisXYCmd, chassisPolarCmd, chassisStopCmd)
}

func withChassis(fn func(u *underbody.UnderBody) error) error {
	if hasProfile && !profile.Chassis.Enabled {
		log.Warn("profile does not list a chassis on this bus")
	}

	bus, err := OpenConnection(fets.DefaultAddress)
	if err != nil {
		return err
	}
	defer bus.Close()
	log.Debugf("connected: %s", bus.Info())

	err = fn(underbody.New(bus))
	flushDryRun(bus, underbody.FrameSize, func(p []byte) string {
		var f underbody.Frame
		copy(f[:], p)
		return underbody.FormatFrame(f)
	})
	return err
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}
