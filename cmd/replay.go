// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/internal/capture"
	"github.com/YukiHonma/sakura/pkg/fets"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.cbor>",
	Short: "Print a telemetry capture written by monitor --record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		return replay(cmd.OutOrStdout(), file)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func replay(w io.Writer, r io.Reader) error {
	reader := capture.NewReader(r)
	var first, prev capture.Record
	count := 0
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if count == 0 {
			first = rec
		}

		change := fets.FormatTelemetry(rec.Telemetry())
		if count > 0 {
			change = describeChange(prev.Telemetry(), rec.Telemetry())
		}
		fmt.Fprintf(w, "[%10.3fs] %-8s 0x%02X  %s  %s  (+%d bytes)\n",
			rec.Time.Sub(first.Time).Seconds(), rec.Device, rec.Address,
			fets.FormatTelemetry(rec.Telemetry()), change, rec.Drained)

		prev = rec
		count++
	}
	fmt.Fprintf(w, "%d records\n", count)
	return nil
}
