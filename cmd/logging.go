// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the log level chosen by --verbose
const EnvLogLevel = "SAKURA_LOG_LEVEL"

func configureLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}
	log.SetLevel(level)
}

func parseLevel(raw string) (log.Level, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return log.InfoLevel, false
	}
	lvl, err := log.ParseLevel(raw)
	if err != nil {
		return log.InfoLevel, false
	}
	return lvl, true
}
