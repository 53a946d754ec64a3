// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

var budgetPeriod time.Duration

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show how many frames fit in one control period",
	Long: `Every command is fire-and-forget, so a control loop that sends more frames
than the line can carry in one period falls behind. budget prints the limit
for the configured baud rate (--baud) and --period.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if budgetPeriod <= 0 {
			return fmt.Errorf("invalid --period %v", budgetPeriod)
		}
		fetCalls := fets.CallBudget(baudRate, budgetPeriod)
		chassisCalls := fetCalls * fets.FrameSize / underbody.FrameSize

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Baud rate:      %d\n", baudRate)
		fmt.Fprintf(out, "Period:         %v\n", budgetPeriod)
		fmt.Fprintf(out, "FET calls:      %d (%d bytes each)\n", fetCalls, fets.FrameSize)
		fmt.Fprintf(out, "Chassis calls:  %d (%d bytes each)\n", chassisCalls, underbody.FrameSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(budgetCmd)
	budgetCmd.Flags().DurationVar(&budgetPeriod, "period", 10*time.Millisecond, "Control period")
}
