// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// exhaustionHint classifies an fsnotify error. Handle exhaustion, a
// directory handle invalidated under the watcher, and a failed buffer
// allocation all end event delivery.
func exhaustionHint(err error) (hint string, fatal bool) {
	switch {
	case errors.Is(err, errnoTooManyOpenFiles):
		return "too many open handles; watch a smaller project tree", true
	case errors.Is(err, errnoInvalidHandle):
		return "watched directory was removed or replaced", true
	case errors.Is(err, errnoNotEnoughMemory):
		return "not enough memory for the change notification buffer", true
	default:
		return "", false
	}
}
