// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/scriptpack/scriptpack/internal/container"
	"github.com/scriptpack/scriptpack/pkg/types"
)

const (
	containerWorkDir  = "/work"
	containerCacheDir = "/var/cache/scriptpack/m2"

	// containerHome is writable by any uid. The container runs as the host
	// user, which cannot write the image's /root/.m2.
	containerHome = "/tmp/scriptpack-home"
)

// ContainerInvoker runs the build tool inside a container with the bundle
// directory mounted as the working directory.
type ContainerInvoker struct {
	engine   container.Engine
	image    string
	binary   string
	cacheDir string
}

// NewContainerInvoker creates an invoker that runs binary from image.
func NewContainerInvoker(engine container.Engine, image, binary, cacheDir string) *ContainerInvoker {
	return &ContainerInvoker{engine: engine, image: image, binary: binary, cacheDir: cacheDir}
}

// Run implements Invoker.
func (c *ContainerInvoker) Run(ctx context.Context, goal string, args []string, workDir string, stdout, stderr io.Writer) (types.ExitCode, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return types.ExitCodeNotStarted, fmt.Errorf("failed to resolve %s: %w", workDir, err)
	}

	if ok, _ := c.engine.ImageExists(ctx, c.image); !ok {
		slog.Info("pulling resolver image", "engine", c.engine.Name(), "image", c.image)
		if err := c.engine.Pull(ctx, c.image); err != nil {
			return types.ExitCodeNotStarted, err
		}
	}

	command := append([]string{c.binary, goal}, args...)
	command = append(command, "-Duser.home="+containerHome)
	volumes := []container.VolumeMount{{HostPath: abs, ContainerPath: containerWorkDir}}
	localRepo := containerHome + "/.m2/repository"
	if c.cacheDir != "" {
		if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
			return types.ExitCodeNotStarted, fmt.Errorf("failed to create cache directory: %w", err)
		}
		volumes = append(volumes, container.VolumeMount{HostPath: c.cacheDir, ContainerPath: containerCacheDir})
		localRepo = containerCacheDir
	}
	command = append(command, "-Dmaven.repo.local="+localRepo)

	res, err := c.engine.Run(ctx, container.RunOptions{
		Image:   c.image,
		Command: command,
		WorkDir: containerWorkDir,
		Env: map[string]string{
			"HOME":         containerHome,
			"MAVEN_CONFIG": containerHome + "/.m2",
		},
		Volumes: volumes,
		User:    hostUser(),
		Remove:  true,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if err != nil {
		return types.ExitCodeNotStarted, err
	}
	if res.Error != nil {
		return res.ExitCode, res.Error
	}
	return res.ExitCode, nil
}

// hostUser returns "uid:gid" so files created in the bind mount belong to
// the caller. It is empty where the notion does not apply.
func hostUser() string {
	if goruntime.GOOS == "windows" {
		return ""
	}
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", uid, gid)
}
