// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// ContainerParallelEnv overrides the container test concurrency limit.
const ContainerParallelEnv = "SCRIPTPACK_TEST_CONTAINER_PARALLEL"

// ContainerSemaphore returns a process-wide channel limiting concurrent
// container runs in tests. Send to acquire, receive to release:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerParallelism())
})

// containerParallelism reads ContainerParallelEnv, falling back to
// min(GOMAXPROCS, 2). Podman on small CI runners hangs rather than failing
// when overloaded.
func containerParallelism() int {
	if v := os.Getenv(ContainerParallelEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return min(runtime.GOMAXPROCS(0), 2)
}
