// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"

	"github.com/scriptpack/scriptpack/internal/testutil"
)

const integrationImage = "debian:stable-slim"

// checkTestcontainersAvailable reports whether a container provider answers.
// Provider detection can panic on misconfigured hosts.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func TestEngine_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	engine, err := AutoDetectEngine()
	if err != nil {
		t.Skipf("skipping container integration tests: %v", err)
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	defer func() { <-sem }()

	ctx := context.Background()
	if ok, _ := engine.ImageExists(ctx, integrationImage); !ok {
		if err := engine.Pull(ctx, integrationImage); err != nil {
			t.Skipf("skipping container integration tests: cannot pull %s: %v", integrationImage, err)
		}
	}

	t.Run("WritesIntoBindMount", func(t *testing.T) {
		dir := t.TempDir()
		var stderr bytes.Buffer
		res, err := engine.Run(ctx, RunOptions{
			Image:   integrationImage,
			Command: []string{"sh", "-c", "mkdir -p lib && echo jar > lib/dep.jar"},
			WorkDir: "/work",
			Volumes: []VolumeMount{{HostPath: dir, ContainerPath: "/work"}},
			Remove:  true,
			Stderr:  &stderr,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !res.ExitCode.IsSuccess() {
			t.Fatalf("Run() exit code = %d, stderr: %s", res.ExitCode, stderr.String())
		}
		data, err := os.ReadFile(filepath.Join(dir, "lib", "dep.jar"))
		if err != nil || strings.TrimSpace(string(data)) != "jar" {
			t.Errorf("bind mount content = %q, %v", data, err)
		}
	})

	t.Run("ReportsExitCode", func(t *testing.T) {
		res, err := engine.Run(ctx, RunOptions{Image: integrationImage, Command: []string{"sh", "-c", "exit 3"}, Remove: true})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.ExitCode != 3 {
			t.Errorf("Run() exit code = %d, want 3", res.ExitCode)
		}
	})
}
