// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// sakuractl - host tool for the FET driver and chassis modules
//
// Drives FET driver boards and the omnidirectional chassis over one shared
// serial line, and monitors FET telemetry.

package main

import (
	"os"

	"github.com/YukiHonma/sakura/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
