// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

var podmanVersionArgs = []string{"version", "--format", "{{.Version}}"}

// selinuxEnforcePath is read to decide whether bind mounts need relabeling.
var selinuxEnforcePath = "/sys/fs/selinux/enforce"

// PodmanEngine implements the Engine interface using the Podman CLI.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
// On Linux with SELinux enforcing, bind mounts are labeled with :z.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")
	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(addSELinuxLabel(isSELinuxEnabled)),
	}, opts...)
	return &PodmanEngine{BaseCLIEngine: NewBaseCLIEngine(path, allOpts...)}
}

func (e *PodmanEngine) Name() string { return string(EngineTypePodman) }

// Available runs a version query. Podman is daemonless, so a working binary
// is enough.
func (e *PodmanEngine) Available() bool { return e.probe(podmanVersionArgs...) }

func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	return e.versionOf(ctx, podmanVersionArgs...)
}

// ImageExists uses podman's exit-status based existence check.
func (e *PodmanEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	return e.RunCommandStatus(ctx, "image", "exists", image) == nil, nil
}

func isSELinuxEnabled() bool {
	data, err := os.ReadFile(selinuxEnforcePath)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// addSELinuxLabel returns a formatter that adds the shared label to mounts
// without one when enabled reports true.
func addSELinuxLabel(enabled func() bool) VolumeFormatFunc {
	return func(v VolumeMount) VolumeMount {
		if v.SELinux == SELinuxLabelNone && enabled() {
			v.SELinux = SELinuxLabelShared
		}
		return v
	}
}
