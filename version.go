// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

// SemVersion is the semantic version string of the sidekick module.
const SemVersion = "1.0.0"
