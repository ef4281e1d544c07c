// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// SELinuxLabelNone means no SELinux label is applied to the mount.
	SELinuxLabelNone SELinuxLabel = ""
	// SELinuxLabelShared allows sharing the volume between containers.
	SELinuxLabelShared SELinuxLabel = "z"
	// SELinuxLabelPrivate restricts the volume to a single container.
	SELinuxLabelPrivate SELinuxLabel = "Z"
)

// ErrInvalidVolumeMount is the sentinel error wrapped by InvalidVolumeMountError.
var ErrInvalidVolumeMount = errors.New("invalid volume mount")

type (
	// SELinuxLabel is the relabeling option of a bind mount.
	SELinuxLabel string

	// VolumeMount is a host directory bound into a container.
	VolumeMount struct {
		HostPath      string
		ContainerPath string
		ReadOnly      bool
		SELinux       SELinuxLabel
	}

	// InvalidVolumeMountError is returned when a mount cannot be expressed
	// as a -v argument.
	InvalidVolumeMountError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVolumeMountError) Error() string {
	return fmt.Sprintf("invalid volume mount %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVolumeMount for errors.Is() compatibility.
func (e *InvalidVolumeMountError) Unwrap() error { return ErrInvalidVolumeMount }

// Validate checks both paths and the label.
func (v VolumeMount) Validate() error {
	switch {
	case strings.TrimSpace(v.HostPath) == "":
		return &InvalidVolumeMountError{Value: v.String(), Reason: "host path must not be empty"}
	case !path.IsAbs(v.ContainerPath):
		return &InvalidVolumeMountError{Value: v.String(), Reason: "container path must be absolute"}
	case strings.Contains(v.HostPath, ":"):
		return &InvalidVolumeMountError{Value: v.String(), Reason: "host path must not contain ':'"}
	}
	switch v.SELinux {
	case SELinuxLabelNone, SELinuxLabelShared, SELinuxLabelPrivate:
		return nil
	default:
		return &InvalidVolumeMountError{Value: v.String(), Reason: fmt.Sprintf("unknown SELinux label %q", v.SELinux)}
	}
}

// String formats the mount as a -v argument.
func (v VolumeMount) String() string {
	var b strings.Builder
	b.WriteString(v.HostPath)
	b.WriteString(":")
	b.WriteString(v.ContainerPath)

	var options []string
	if v.ReadOnly {
		options = append(options, "ro")
	}
	if v.SELinux != SELinuxLabelNone {
		options = append(options, string(v.SELinux))
	}
	if len(options) > 0 {
		b.WriteString(":")
		b.WriteString(strings.Join(options, ","))
	}
	return b.String()
}

// ParseVolumeMount parses "host:container[:options]". Recognized options
// are ro, rw, z and Z; others are ignored.
func ParseVolumeMount(s string) (VolumeMount, error) {
	var m VolumeMount
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return m, &InvalidVolumeMountError{Value: s, Reason: "expected host:container"}
	}
	m.HostPath = parts[0]
	m.ContainerPath = parts[1]
	if len(parts) >= 3 {
		for opt := range strings.SplitSeq(parts[2], ",") {
			switch opt {
			case "ro":
				m.ReadOnly = true
			case "z", "Z":
				m.SELinux = SELinuxLabel(opt)
			}
		}
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}
