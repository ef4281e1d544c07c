// SPDX-License-Identifier: MPL-2.0

package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// ErrInvalidPID is returned for non-positive process IDs.
var ErrInvalidPID = errors.New("invalid process id")

type (
	// Monitor samples host usage. CPU load is measured between consecutive
	// CPUUsedPercent calls, so a Monitor is meant to be long-lived. It is
	// safe for concurrent use.
	Monitor struct {
		mu      sync.Mutex
		prevCPU cpu.TimesStat
		src     source
		now     func() time.Time
		ownPID  int
	}

	// source is the slice of gopsutil the Monitor reads.
	source struct {
		cpuTimes   func(ctx context.Context) (cpu.TimesStat, error)
		memory     func(ctx context.Context) (*mem.VirtualMemoryStat, error)
		netIO      func(ctx context.Context) ([]net.IOCountersStat, error)
		interfaces func(ctx context.Context) (net.InterfaceStatList, error)
	}

	// Bandwidth holds cumulative network byte counters at a point in time.
	Bandwidth struct {
		Time     time.Time
		Received uint64
		Sent     uint64
	}

	// Memory holds host memory figures in bytes.
	Memory struct {
		Total     uint64
		Available uint64
	}

	// Snapshot is one combined sample.
	Snapshot struct {
		CPUPercent float64
		Memory     Memory
		Network    Bandwidth
	}

	// ProcessInfo describes a running process.
	ProcessInfo struct {
		PID     int
		Name    string
		Cmdline string
	}
)

// New returns a Monitor primed with a first CPU sample, so the first
// CPUUsedPercent call reports load since New.
func New(ctx context.Context) (*Monitor, error) {
	return newMonitor(ctx, hostSource())
}

func newMonitor(ctx context.Context, src source) (*Monitor, error) {
	m := &Monitor{src: src, now: time.Now, ownPID: os.Getpid()}
	t, err := src.cpuTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cpu times: %w", err)
	}
	m.prevCPU = t
	return m, nil
}

func hostSource() source {
	return source{
		cpuTimes: func(ctx context.Context) (cpu.TimesStat, error) {
			all, err := cpu.TimesWithContext(ctx, false)
			if err != nil {
				return cpu.TimesStat{}, err
			}
			if len(all) == 0 {
				return cpu.TimesStat{}, errors.New("no cpu times reported")
			}
			return all[0], nil
		},
		memory: mem.VirtualMemoryWithContext,
		netIO: func(ctx context.Context) ([]net.IOCountersStat, error) {
			return net.IOCountersWithContext(ctx, true)
		},
		interfaces: net.InterfacesWithContext,
	}
}

// PID returns the current process ID.
func (m *Monitor) PID() int { return m.ownPID }

// CPUUsedPercent returns the share of CPU time spent busy since the
// previous call (or since New), in the range [0, 100]. Samples are read
// under the lock, so concurrent callers never store an older sample over a
// newer one.
func (m *Monitor) CPUUsedPercent(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.src.cpuTimes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu times: %w", err)
	}
	prev := m.prevCPU
	m.prevCPU = cur
	return busyPercent(prev, cur), nil
}

// busyPercent computes the busy share between two cumulative samples.
// Counter resets yield 0.
func busyPercent(prev, cur cpu.TimesStat) float64 {
	prevBusy, prevTotal := busyAndTotal(prev)
	curBusy, curTotal := busyAndTotal(cur)
	if curTotal <= prevTotal || curBusy < prevBusy {
		return 0
	}
	pct := (curBusy - prevBusy) / (curTotal - prevTotal) * 100
	return min(max(pct, 0), 100)
}

// Guest time is already part of User on Linux.
func busyAndTotal(t cpu.TimesStat) (busy, total float64) {
	total = t.User + t.System + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal + t.Idle
	busy = total - t.Idle - t.Iowait
	return busy, total
}

// Memory returns total and available memory.
func (m *Monitor) Memory(ctx context.Context) (Memory, error) {
	vm, err := m.src.memory(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("failed to read memory: %w", err)
	}
	return Memory{Total: vm.Total, Available: vm.Available}, nil
}

// NetworkUsage sums byte counters over all non-loopback interfaces.
func (m *Monitor) NetworkUsage(ctx context.Context) (Bandwidth, error) {
	counters, err := m.src.netIO(ctx)
	if err != nil {
		return Bandwidth{}, fmt.Errorf("failed to read network counters: %w", err)
	}
	loopback, err := m.loopbacks(ctx)
	if err != nil {
		return Bandwidth{}, err
	}

	bw := Bandwidth{Time: m.now()}
	for _, c := range counters {
		if loopback[c.Name] {
			continue
		}
		bw.Received += c.BytesRecv
		bw.Sent += c.BytesSent
	}
	return bw, nil
}

func (m *Monitor) loopbacks(ctx context.Context) (map[string]bool, error) {
	ifaces, err := m.src.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list network interfaces: %w", err)
	}
	out := make(map[string]bool)
	for _, iface := range ifaces {
		if slices.Contains(iface.Flags, "loopback") {
			out[iface.Name] = true
		}
	}
	return out, nil
}

// Snapshot takes one sample of every figure.
func (m *Monitor) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.CPUPercent, err = m.CPUUsedPercent(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.Memory, err = m.Memory(ctx); err != nil {
		return Snapshot{}, err
	}
	if s.Network, err = m.NetworkUsage(ctx); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Rate returns bytes per second received and sent between prev and b.
// A non-positive interval or a counter reset yields zero.
func (b Bandwidth) Rate(prev Bandwidth) (rx, tx float64) {
	secs := b.Time.Sub(prev.Time).Seconds()
	if secs <= 0 {
		return 0, 0
	}
	if b.Received >= prev.Received {
		rx = float64(b.Received-prev.Received) / secs
	}
	if b.Sent >= prev.Sent {
		tx = float64(b.Sent-prev.Sent) / secs
	}
	return rx, tx
}
