// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptpack/scriptpack/internal/sysinfo"
)

func newSysinfoCommand(app *App) *cobra.Command {
	var (
		interval time.Duration
		samples  int
	)
	sysCmd := &cobra.Command{
		Use:   "sysinfo",
		Short: "Show host CPU, memory and network usage",
		Long: `Show host CPU, memory and network usage.

CPU load and network rates are measured over --interval. With --samples
greater than one the measurement repeats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSysinfo(cmd.Context(), app, interval, samples)
		},
	}
	sysCmd.Flags().DurationVar(&interval, "interval", time.Second, "measurement interval")
	sysCmd.Flags().IntVarP(&samples, "samples", "n", 1, "number of measurements")

	sysCmd.AddCommand(&cobra.Command{
		Use:   "ps <pid>",
		Short: "Show a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}
			info, err := sysinfo.Process(cmd.Context(), pid)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s%d\n", labelStyle.Render("pid"), info.PID)
			fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render("name"), info.Name)
			if info.Cmdline != "" {
				fmt.Fprintf(app.stdout, "%s%s\n", labelStyle.Render("command"), info.Cmdline)
			}
			return nil
		},
	})

	sysCmd.AddCommand(&cobra.Command{
		Use:   "kill <pid>",
		Short: "Forcibly terminate a process, such as a stuck resolver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}
			if err := sysinfo.KillProcess(cmd.Context(), pid); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s Killed process %d\n", SuccessStyle.Render("✓"), pid)
			return nil
		},
	})
	return sysCmd
}

func parsePID(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q: %w", s, sysinfo.ErrInvalidPID)
	}
	return pid, nil
}

func showSysinfo(ctx context.Context, app *App, interval time.Duration, samples int) error {
	m, err := sysinfo.New(ctx)
	if err != nil {
		return err
	}
	prev, err := m.NetworkUsage(ctx)
	if err != nil {
		return err
	}

	out := app.stdout
	for i := range max(samples, 1) {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return err
		}
		rx, tx := snap.Network.Rate(prev)
		prev = snap.Network

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s%.1f%%\n", labelStyle.Render("cpu"), snap.CPUPercent)
		fmt.Fprintf(out, "%s%s / %s available\n", labelStyle.Render("memory"),
			formatBytes(snap.Memory.Available), formatBytes(snap.Memory.Total))
		fmt.Fprintf(out, "%s%s/s in, %s/s out\n", labelStyle.Render("network"),
			formatBytes(uint64(rx)), formatBytes(uint64(tx)))
	}
	fmt.Fprintf(out, "%s%d\n", labelStyle.Render("pid"), m.PID())
	return nil
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
