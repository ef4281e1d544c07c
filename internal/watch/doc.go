// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files in a repository working tree
// change.
//
// Events are filtered with doublestar patterns and coalesced: the callback
// fires once per quiet period with every path that changed since the last
// run. A project's svn:ignore list converts to ignore patterns with
// IgnorePatterns, so build output never triggers a rebuild.
package watch
