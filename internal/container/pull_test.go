// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type daemonStatus int

func (d daemonStatus) Error() string { return fmt.Sprintf("exit status %d", int(d)) }
func (d daemonStatus) ExitCode() int { return int(d) }

func TestIsTransientPullError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("pull: %w", context.DeadlineExceeded), false},
		{"dns", errors.New("Could not resolve host: registry-1.docker.io"), true},
		{"rate limited", errors.New("toomanyrequests: You have reached your pull rate limit"), true},
		{"overlay", errors.New("error creating overlay mount to /var/lib"), true},
		{"daemon failure status", fmt.Errorf("docker pull: %w", daemonStatus(125)), true},
		{"plain failure status", fmt.Errorf("docker pull: %w", daemonStatus(1)), false},
		{"unknown manifest", errors.New("manifest unknown"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isTransientPullError(tt.err); got != tt.want {
				t.Errorf("isTransientPullError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBaseCLIEngine_PullDoesNotRetryCancelled(t *testing.T) {
	t.Parallel()

	m := &mockCommandRecorder{exitCode: 1, stderr: "connection refused"}
	e := newMockEngine(t, m, WithPullBackoff(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Pull(ctx, "maven:3-eclipse-temurin-21")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Pull() error = %v, want context.Canceled", err)
	}
	if m.calls() != 1 {
		t.Errorf("Pull() attempts = %d, want 1", m.calls())
	}
}

func TestSleepCtx(t *testing.T) {
	t.Parallel()

	if err := sleepCtx(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepCtx() = %v, want nil", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepCtx() on cancelled context = %v, want context.Canceled", err)
	}
}
