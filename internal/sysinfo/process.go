// SPDX-License-Identifier: MPL-2.0

package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// Process looks up a running process.
func Process(ctx context.Context, pid int) (ProcessInfo, error) {
	p, err := lookup(ctx, pid)
	if err != nil {
		return ProcessInfo{}, err
	}
	info := ProcessInfo{PID: pid}
	if info.Name, err = p.NameWithContext(ctx); err != nil {
		return ProcessInfo{}, fmt.Errorf("failed to read name of process %d: %w", pid, err)
	}
	// The command line is unreadable for other users' processes on some
	// platforms; the name alone is still useful.
	info.Cmdline, _ = p.CmdlineWithContext(ctx)
	return info, nil
}

// KillProcess forcibly terminates pid (SIGKILL, or TerminateProcess on
// Windows).
func KillProcess(ctx context.Context, pid int) error {
	p, err := lookup(ctx, pid)
	if err != nil {
		return err
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}

func lookup(ctx context.Context, pid int) (*process.Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", pid, err)
	}
	return p, nil
}
