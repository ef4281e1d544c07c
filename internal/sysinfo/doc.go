// SPDX-License-Identifier: MPL-2.0

// Package sysinfo samples host usage for the machine that builds and ships
// script bundles: CPU load between samples, memory, and network byte
// counters. It can also look up and kill processes, which is how a stuck
// dependency resolver is cleaned up by hand.
package sysinfo
