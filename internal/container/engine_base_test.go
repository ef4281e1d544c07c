// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBaseCLIEngine_RunArgs(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/docker")
	got := e.RunArgs(RunOptions{
		Image:   "maven:3-eclipse-temurin-21",
		Command: []string{"mvn", "dependency:copy-dependencies"},
		WorkDir: "/work",
		Env:     map[string]string{"B": "2", "A": "1"},
		Volumes: []VolumeMount{{HostPath: "/tmp/dist", ContainerPath: "/work"}},
		User:    "1000:1000",
		Remove:  true,
	})

	want := "run --rm -w /work --user 1000:1000 -e A=1 -e B=2 -v /tmp/dist:/work maven:3-eclipse-temurin-21 mvn dependency:copy-dependencies"
	if argsString(got) != want {
		t.Errorf("RunArgs() =\n  %s\nwant\n  %s", argsString(got), want)
	}
}

func TestBaseCLIEngine_RunArgsVolumeFormatter(t *testing.T) {
	t.Parallel()

	e := NewBaseCLIEngine("/usr/bin/podman", WithVolumeFormatter(addSELinuxLabel(func() bool { return true })))
	got := argsString(e.RunArgs(RunOptions{
		Image:   "img",
		Volumes: []VolumeMount{{HostPath: "/a", ContainerPath: "/b", ReadOnly: true}, {HostPath: "/c", ContainerPath: "/d", SELinux: SELinuxLabelPrivate}},
	}))
	if !strings.Contains(got, "-v /a:/b:ro,z") || !strings.Contains(got, "-v /c:/d:Z") {
		t.Errorf("RunArgs() = %s, want SELinux labels applied only where missing", got)
	}
}

func TestBaseCLIEngine_RunExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
	}{
		{"success", 0},
		{"tool failure", 1},
		{"engine failure", 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &mockCommandRecorder{exitCode: tt.exitCode, stdout: "resolving"}
			e := newMockEngine(t, m)
			var stdout bytes.Buffer
			res, err := e.Run(context.Background(), RunOptions{Image: "img", Stdout: &stdout})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if int(res.ExitCode) != tt.exitCode || res.Error != nil {
				t.Errorf("Run() = %+v, want exit code %d", res, tt.exitCode)
			}
			if stdout.String() != "resolving" {
				t.Errorf("stdout = %q, want %q", stdout.String(), "resolving")
			}
			if m.lastArgs()[0] != "run" {
				t.Errorf("invoked %v, want a run command", m.lastArgs())
			}
		})
	}
}

func TestBaseCLIEngine_RunValidation(t *testing.T) {
	t.Parallel()

	m := &mockCommandRecorder{}
	e := newMockEngine(t, m)
	if _, err := e.Run(context.Background(), RunOptions{}); err == nil {
		t.Error("Run() without image error = nil")
	}
	if _, err := e.Run(context.Background(), RunOptions{Image: "img", Volumes: []VolumeMount{{HostPath: "/x", ContainerPath: "rel"}}}); !errors.Is(err, ErrInvalidVolumeMount) {
		t.Errorf("Run() with relative mount error = %v, want ErrInvalidVolumeMount", err)
	}
	if m.calls() != 0 {
		t.Errorf("engine invoked %d times for invalid options", m.calls())
	}

	missing := &DockerEngine{BaseCLIEngine: NewBaseCLIEngine("", WithName("docker"))}
	if _, err := missing.Run(context.Background(), RunOptions{Image: "img"}); !errors.Is(err, ErrNoEngineAvailable) {
		t.Errorf("Run() without binary error = %v, want ErrNoEngineAvailable", err)
	}
}

func TestBaseCLIEngine_PullRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	m := &mockCommandRecorder{exitCode: 1, stderr: "Could not resolve host: registry"}
	e := newMockEngine(t, m, WithPullBackoff(time.Millisecond))
	if err := e.Pull(context.Background(), "img"); err == nil {
		t.Fatal("Pull() error = nil, want failure")
	}
	if m.calls() != pullAttempts {
		t.Errorf("Pull() attempts = %d, want %d", m.calls(), pullAttempts)
	}

	permanent := &mockCommandRecorder{exitCode: 1, stderr: "manifest unknown"}
	e = newMockEngine(t, permanent, WithPullBackoff(time.Millisecond))
	if err := e.Pull(context.Background(), "img"); err == nil || !strings.Contains(err.Error(), "manifest unknown") {
		t.Errorf("Pull() error = %v, want engine output in message", err)
	}
	if permanent.calls() != 1 {
		t.Errorf("Pull() attempts on permanent failure = %d, want 1", permanent.calls())
	}
}

func TestDockerEngine_Version(t *testing.T) {
	t.Parallel()

	m := &mockCommandRecorder{stdout: "27.1.1\n"}
	e := newMockEngine(t, m)
	v, err := e.Version(context.Background())
	if err != nil || v != "27.1.1" {
		t.Errorf("Version() = %q, %v", v, err)
	}
	if ok, _ := e.ImageExists(context.Background(), "img"); !ok {
		t.Error("ImageExists() = false with exit code 0")
	}
}
