// SPDX-License-Identifier: MPL-2.0

// Package gitrepo implements repo.Repository on top of plain git
// repositories, one per owner. Revision n is the n-th commit on the
// first-parent chain of HEAD; revision 0 is the empty repository.
//
// Git tracks neither empty directories nor per-file metadata, so both live in
// a TOML sidecar (.scriptpack/properties.toml) committed alongside the files.
package gitrepo
