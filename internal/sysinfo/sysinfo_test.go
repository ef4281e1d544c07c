// SPDX-License-Identifier: MPL-2.0

package sysinfo

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/scriptpack/scriptpack/internal/testutil"
)

// fakeSource replays cpu samples in order and serves fixed figures.
func fakeSource(samples ...cpu.TimesStat) source {
	i := 0
	return source{
		cpuTimes: func(context.Context) (cpu.TimesStat, error) {
			s := samples[min(i, len(samples)-1)]
			i++
			return s, nil
		},
		memory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 << 30, Available: 4 << 30}, nil
		},
		netIO: func(context.Context) ([]net.IOCountersStat, error) {
			return []net.IOCountersStat{
				{Name: "lo", BytesRecv: 1000, BytesSent: 1000},
				{Name: "eth0", BytesRecv: 300, BytesSent: 100},
				{Name: "wlan0", BytesRecv: 20, BytesSent: 5},
			}, nil
		},
		interfaces: func(context.Context) (net.InterfaceStatList, error) {
			return net.InterfaceStatList{
				{Name: "lo", Flags: []string{"up", "loopback"}},
				{Name: "eth0", Flags: []string{"up", "broadcast"}},
				{Name: "wlan0", Flags: []string{"up"}},
			}, nil
		},
	}
}

func TestBusyPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prev, cur cpu.TimesStat
		want      float64
	}{
		{
			name: "half busy",
			prev: cpu.TimesStat{User: 10, Idle: 90},
			cur:  cpu.TimesStat{User: 30, Idle: 110},
			want: 50,
		},
		{
			name: "iowait counts as idle",
			prev: cpu.TimesStat{},
			cur:  cpu.TimesStat{System: 25, Iowait: 25, Idle: 50},
			want: 25,
		},
		{
			name: "no elapsed time",
			prev: cpu.TimesStat{User: 10, Idle: 10},
			cur:  cpu.TimesStat{User: 10, Idle: 10},
			want: 0,
		},
		{
			name: "counter reset",
			prev: cpu.TimesStat{User: 100, Idle: 100},
			cur:  cpu.TimesStat{User: 1, Idle: 1},
			want: 0,
		},
		{
			name: "fully busy",
			prev: cpu.TimesStat{},
			cur:  cpu.TimesStat{User: 40, Nice: 10, Irq: 5, Softirq: 5, Steal: 40},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := busyPercent(tt.prev, tt.cur); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("busyPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonitor_CPUUsedPercentBetweenCalls(t *testing.T) {
	t.Parallel()

	m, err := newMonitor(context.Background(), fakeSource(
		cpu.TimesStat{User: 0, Idle: 0},
		cpu.TimesStat{User: 10, Idle: 30},
		cpu.TimesStat{User: 40, Idle: 30},
	))
	if err != nil {
		t.Fatalf("newMonitor() error = %v", err)
	}

	ctx := context.Background()
	first, err := m.CPUUsedPercent(ctx)
	if err != nil || first != 25 {
		t.Errorf("first CPUUsedPercent() = %v, %v; want 25", first, err)
	}
	second, err := m.CPUUsedPercent(ctx)
	if err != nil || second != 100 {
		t.Errorf("second CPUUsedPercent() = %v, %v; want 100", second, err)
	}
}

func TestMonitor_CPUUsedPercentConcurrentKeepsNewestSample(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		ticks float64
	)
	src := fakeSource()
	src.cpuTimes = func(context.Context) (cpu.TimesStat, error) {
		mu.Lock()
		ticks++
		cur := ticks
		mu.Unlock()
		// Widen the window between reading a sample and storing it.
		time.Sleep(time.Millisecond)
		return cpu.TimesStat{User: cur, Idle: cur}, nil
	}
	m, err := newMonitor(context.Background(), src)
	if err != nil {
		t.Fatalf("newMonitor() error = %v", err)
	}

	const callers = 32
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if pct, err := m.CPUUsedPercent(context.Background()); err != nil || pct != 50 {
				t.Errorf("CPUUsedPercent() = %v, %v; want 50", pct, err)
			}
		}()
	}
	wg.Wait()

	if got := m.prevCPU.User; got != callers+1 {
		t.Errorf("stored sample User = %v, want the newest (%d)", got, callers+1)
	}
}

func TestMonitor_NewFailsWithoutCPUTimes(t *testing.T) {
	t.Parallel()

	src := fakeSource(cpu.TimesStat{})
	boom := errors.New("boom")
	src.cpuTimes = func(context.Context) (cpu.TimesStat, error) { return cpu.TimesStat{}, boom }

	if _, err := newMonitor(context.Background(), src); !errors.Is(err, boom) {
		t.Errorf("newMonitor() error = %v, want %v", err, boom)
	}
}

func TestMonitor_Snapshot(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m, err := newMonitor(context.Background(), fakeSource(cpu.TimesStat{}, cpu.TimesStat{User: 1, Idle: 3}))
	if err != nil {
		t.Fatalf("newMonitor() error = %v", err)
	}
	m.now = testutil.NewFakeClock(at).Now

	s, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if s.CPUPercent != 25 {
		t.Errorf("CPUPercent = %v, want 25", s.CPUPercent)
	}
	if s.Memory != (Memory{Total: 16 << 30, Available: 4 << 30}) {
		t.Errorf("Memory = %+v", s.Memory)
	}
	want := Bandwidth{Time: at, Received: 320, Sent: 105}
	if s.Network != want {
		t.Errorf("Network = %+v, want %+v (loopback excluded)", s.Network, want)
	}
}

func TestMonitor_NetworkUsageInterfaceError(t *testing.T) {
	t.Parallel()

	src := fakeSource(cpu.TimesStat{})
	src.interfaces = func(context.Context) (net.InterfaceStatList, error) {
		return nil, errors.New("no netlink")
	}
	m, err := newMonitor(context.Background(), src)
	if err != nil {
		t.Fatalf("newMonitor() error = %v", err)
	}
	if _, err := m.NetworkUsage(context.Background()); err == nil {
		t.Error("NetworkUsage() error = nil, want interface listing failure")
	}
}

func TestBandwidth_Rate(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	prev := Bandwidth{Time: t0, Received: 1000, Sent: 500}

	tests := []struct {
		name   string
		cur    Bandwidth
		rx, tx float64
	}{
		{name: "two seconds", cur: Bandwidth{Time: t0.Add(2 * time.Second), Received: 3000, Sent: 700}, rx: 1000, tx: 100},
		{name: "same instant", cur: Bandwidth{Time: t0, Received: 5000, Sent: 5000}},
		{name: "counter reset", cur: Bandwidth{Time: t0.Add(time.Second), Received: 10, Sent: 600}, tx: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rx, tx := tt.cur.Rate(prev)
			if rx != tt.rx || tx != tt.tx {
				t.Errorf("Rate() = (%v, %v), want (%v, %v)", rx, tx, tt.rx, tt.tx)
			}
		})
	}
}

func TestNew_Host(t *testing.T) {
	t.Parallel()

	m, err := New(context.Background())
	if err != nil {
		t.Skipf("host cpu times unavailable: %v", err)
	}
	if pct, err := m.CPUUsedPercent(context.Background()); err != nil || pct < 0 || pct > 100 {
		t.Errorf("CPUUsedPercent() = %v, %v", pct, err)
	}
	if m.PID() <= 0 {
		t.Errorf("PID() = %d", m.PID())
	}
}
