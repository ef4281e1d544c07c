// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// exhaustionHint classifies an fsnotify error. Inotify running out of watches
// or descriptors stops event delivery for good, so those errors are fatal and
// come with a hint naming the limit to raise.
func exhaustionHint(err error) (hint string, fatal bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "inotify watch limit reached; raise fs.inotify.max_user_watches", true
	case errors.Is(err, syscall.EMFILE):
		return "process file descriptor limit reached; raise it with ulimit -n", true
	case errors.Is(err, syscall.ENFILE):
		return "system file table is full; raise fs.file-max", true
	default:
		return "", false
	}
}
