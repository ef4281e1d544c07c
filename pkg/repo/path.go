// SPDX-License-Identifier: MPL-2.0

package repo

import (
	stdpath "path"
	"strings"
)

// Normalize cleans a repository path: backslashes become slashes, "." and
// ".." segments are resolved, and leading or trailing slashes are removed.
// The repository root normalizes to "".
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	cleaned := stdpath.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

// Join joins path elements and normalizes the result.
func Join(elem ...string) string {
	return Normalize(stdpath.Join(elem...))
}

// Dir returns the parent directory of a repository path ("" for top-level entries).
func Dir(p string) string {
	d := stdpath.Dir(Normalize(p))
	if d == "." {
		return ""
	}
	return d
}

// HasExtension reports whether the path's extension equals ext
// (case-sensitive, without the dot).
func HasExtension(p, ext string) bool {
	return strings.TrimPrefix(stdpath.Ext(p), ".") == ext
}

// isUnder reports whether p lies below dir. With recursive false only direct
// children qualify. The root directory is "".
func isUnder(p, dir string, recursive bool) bool {
	if p == "" || p == dir {
		return false
	}
	rest := p
	if dir != "" {
		if !strings.HasPrefix(p, dir+"/") {
			return false
		}
		rest = p[len(dir)+1:]
	}
	return recursive || !strings.Contains(rest, "/")
}
