// SPDX-License-Identifier: MPL-2.0

// Package repo defines the versioned file repository that script projects
// live in, as seen by the packaging pipeline.
//
// # Data model
//
//   - [FileEntry]: a file or directory at a repository-root-relative path,
//     owned by one user, with free-form properties and optional content.
//   - [FileType] and [FileCategory]: classification derived from the path,
//     including the "distributable" flags that drive bundle collection.
//   - [Revision]: an immutable snapshot number, or [LatestRevision].
//
// # Access
//
// [Repository] is the narrow query/save facade consumed by the handlers.
// [MemoryRepository] is a complete in-process implementation where every
// Save produces a new revision; the git-backed implementation lives in
// internal/gitrepo.
//
// Repository paths always use forward slashes and never start with a slash.
package repo
