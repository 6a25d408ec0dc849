// Package version provides centralized version information for the sluice
// binaries. The sluiced daemon and the sluicectl CLI are versioned
// independently so the client can evolve without a daemon release.
// All versions follow semantic versioning (semver) conventions.
package version

// SluicedVersion holds the current sluiced daemon version.
// Format: major.minor.patch[-prerelease][+build]
const SluicedVersion = "0.1.0-dev"

// SluicectlVersion holds the current sluicectl CLI version.
// Format: major.minor.patch[-prerelease][+build]
const SluicectlVersion = "0.1.0-dev"
