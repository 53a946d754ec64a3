// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

const consoleHelp = "write <out> <0|1> | pwm <out> <duty> | wave <form> <out> <ms> | " +
	"respond|trigger <out> <in> <act-in> <act-out> | xy <vx> <vy> <w> | polar <s> <dir> <w> | stop"

// console runs one typed command line against the bus modules
type console struct {
	fet     *fets.Fets
	chassis *underbody.UnderBody
}

// Run executes line and returns a short description of what was sent
func (c *console) Run(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "write":
		if err := wantArgs(name, args, 2); err != nil {
			return "", err
		}
		port, err := fets.ParsePort(args[0])
		if err != nil {
			return "", err
		}
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("write: invalid value %q", args[1])
		}
		if err := c.fet.Write(value, port); err != nil {
			return "", err
		}
		return fmt.Sprintf("%v <- %d", port, value), nil

	case "pwm":
		if err := wantArgs(name, args, 2); err != nil {
			return "", err
		}
		port, err := fets.ParsePort(args[0])
		if err != nil {
			return "", err
		}
		duty, err := parseDuty(args[1])
		if err != nil {
			return "", err
		}
		if err := c.fet.WritePWM(duty, port); err != nil {
			return "", err
		}
		return fmt.Sprintf("%v pwm %.1f%%", port, duty*100), nil

	case "wave":
		if err := wantArgs(name, args, 3); err != nil {
			return "", err
		}
		form, err := fets.ParseWaveform(args[0])
		if err != nil {
			return "", err
		}
		port, err := fets.ParsePort(args[1])
		if err != nil {
			return "", err
		}
		period, err := strconv.Atoi(args[2])
		if err != nil {
			return "", fmt.Errorf("wave: invalid period %q", args[2])
		}
		if err := c.fet.WriteWave(form, period, port); err != nil {
			return "", err
		}
		return fmt.Sprintf("%v %s %dms", port, fets.FunctionName(fets.Function(form)), period), nil

	case "respond", "trigger":
		if err := wantArgs(name, args, 4); err != nil {
			return "", err
		}
		out, err := fets.ParsePort(args[0])
		if err != nil {
			return "", err
		}
		in, err := fets.ParsePort(args[1])
		if err != nil {
			return "", err
		}
		actIn, err := strconv.ParseBool(args[2])
		if err != nil {
			return "", fmt.Errorf("%s: invalid act-in %q", name, args[2])
		}
		actOut, err := strconv.ParseBool(args[3])
		if err != nil {
			return "", fmt.Errorf("%s: invalid act-out %q", name, args[3])
		}
		call := c.fet.SensorRespond
		if name == "trigger" {
			call = c.fet.SensorTrigger
		}
		matched, err := call(actIn, actOut, out, in)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v %s on %v (at act-out: %v)", out, name, in, matched), nil

	case "xy", "polar":
		if err := wantArgs(name, args, 3); err != nil {
			return "", err
		}
		v, err := parseInts(args)
		if err != nil {
			return "", err
		}
		if name == "xy" {
			err = c.chassis.MoveXY(v[0], v[1], v[2])
		} else {
			err = c.chassis.MovePolar(v[0], v[1], v[2])
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("chassis %s %s", name, strings.Join(args, " ")), nil

	case "stop":
		if err := c.chassis.Stop(); err != nil {
			return "", err
		}
		return "chassis stop", nil

	case "help", "?":
		return consoleHelp, nil
	}

	return "", fmt.Errorf("unknown command %q (try help)", name)
}

func wantArgs(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: want %d arguments, got %d", name, n, len(args))
	}
	return nil
}
