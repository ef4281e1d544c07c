// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"path"
	"strings"
)

// IgnorePatterns converts a directory's svn:ignore value into watch ignore
// patterns. Each non-blank line names a direct child of dir; the child and
// everything below it are ignored. dir is slash-separated and relative to
// the watched base ("" for the base itself).
func IgnorePatterns(dir, ignoreList string) []string {
	var out []string
	for line := range strings.SplitSeq(ignoreList, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		child := line
		if dir != "" {
			child = path.Join(dir, line)
		}
		out = append(out, child, child+"/**")
	}
	return out
}
