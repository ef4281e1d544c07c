// SPDX-License-Identifier: MPL-2.0

// Package testutil holds helpers shared by the scriptpack test suites:
// environment and working directory management, repository seeding, a
// controllable clock, and a limiter for container-backed tests.
package testutil
