// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scriptpack/scriptpack/pkg/types"
)

const (
	pullAttempts = 3
	pullBackoff  = 2 * time.Second

	// exitDaemonFailure is the engines' status for "the daemon failed"
	// as opposed to the pulled image or the registry refusing it.
	exitDaemonFailure types.ExitCode = 125
)

// transientPullMarkers are engine and registry messages that usually clear
// up on a second attempt.
var transientPullMarkers = []string{
	"ping_group_range",
	"OCI runtime error",
	"Temporary failure resolving",
	"Could not resolve host",
	"connection timed out",
	"connection refused",
	"TLS handshake timeout",
	"toomanyrequests",
	"error creating overlay mount",
	"error mounting layer",
}

// Pull fetches a resolver image. Network and daemon hiccups are retried with
// exponential backoff; a missing image or denied pull fails at once.
func (e *BaseCLIEngine) Pull(ctx context.Context, image string) error {
	var lastErr error
	for attempt := range pullAttempts {
		if attempt > 0 {
			if err := sleepCtx(ctx, e.pullBackoff<<(attempt-1)); err != nil {
				return fmt.Errorf("%s pull %s aborted: %w", e.name, image, err)
			}
			slog.Debug("retrying image pull", "engine", e.name, "image", image, "attempt", attempt+1, "error", lastErr)
		}

		out, err := e.CreateCommand(ctx, "pull", image).CombinedOutput()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%s pull %s: %w: %s", e.name, image, err, strings.TrimSpace(string(out)))
		if !isTransientPullError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// isTransientPullError reports whether a failed pull may succeed on retry.
// Context cancellation never is.
func isTransientPullError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if code, ok := types.ExitCodeOf(err); ok && code == exitDaemonFailure {
		return true
	}
	msg := err.Error()
	for _, marker := range transientPullMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
