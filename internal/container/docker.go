// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os/exec"
)

// dockerVersionArgs query the daemon rather than the client, so a CLI with no
// reachable daemon counts as unavailable.
var dockerVersionArgs = []string{"version", "--format", "{{.Server.Version}}"}

// DockerEngine runs resolver containers through the Docker CLI.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine locates docker on PATH. A missing binary yields an engine
// whose Available reports false.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	path, _ := exec.LookPath("docker")
	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypeDocker))}, opts...)
	return &DockerEngine{BaseCLIEngine: NewBaseCLIEngine(path, allOpts...)}
}

func (e *DockerEngine) Name() string { return string(EngineTypeDocker) }

func (e *DockerEngine) Available() bool { return e.probe(dockerVersionArgs...) }

// Version returns the daemon version.
func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	return e.versionOf(ctx, dockerVersionArgs...)
}

// ImageExists reports whether image is in the local store. Docker has no
// dedicated existence check, so inspect failing for any reason means absent.
func (e *DockerEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	return e.RunCommandStatus(ctx, "image", "inspect", "--format", "{{.Id}}", image) == nil, nil
}
