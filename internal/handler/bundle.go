// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

type (
	// CopyOp records one file written into a bundle.
	CopyOp struct {
		// Source is the repository path.
		Source string
		// Dest is the bundle-relative destination, rooted at "/".
		Dest string
	}

	// Bundle is the result of one materialization. It is created fresh per
	// call and also serves as the io.Writer that captures resolver output.
	Bundle struct {
		// Root is the target directory on disk.
		Root string
		// ScriptPath is the bundle-relative path of the script itself.
		ScriptPath string
		// Copies lists every file written, in write order.
		Copies []CopyOp
		// Success is false when the post step (dependency resolution) failed.
		Success bool

		mu      sync.Mutex
		lines   []string
		partial bytes.Buffer
		mirror  io.Writer
	}
)

func newBundle(root string, mirror io.Writer) *Bundle {
	return &Bundle{Root: root, Success: true, mirror: mirror}
}

// Write implements io.Writer. Output is split into log lines; a trailing
// partial line is kept until the next newline or a call to Log.
func (b *Bundle) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mirror != nil {
		_, _ = b.mirror.Write(p)
	}
	b.partial.Write(p)
	for {
		line, err := b.partial.ReadString('\n')
		if err != nil {
			// No newline left: put the fragment back.
			b.partial.Reset()
			b.partial.WriteString(line)
			break
		}
		b.lines = append(b.lines, strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Printf appends one formatted line to the log.
func (b *Bundle) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(b, format+"\n", args...)
}

// Log returns the ordered log lines, including any unterminated output.
func (b *Bundle) Log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := append([]string(nil), b.lines...)
	if b.partial.Len() > 0 {
		out = append(out, b.partial.String())
	}
	return out
}

// String joins the log lines.
func (b *Bundle) String() string {
	return strings.Join(b.Log(), "\n")
}
