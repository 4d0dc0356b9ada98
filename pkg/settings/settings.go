// Package settings provides build metadata, runtime configuration, and
// context helpers shared by the tablekit CLI and the widget packages.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tablekit"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	NoColor     bool
	Interactive bool
	// ReorderTimeout bounds how long the host reorder callback may run.
	// Zero waits indefinitely.
	ReorderTimeout time.Duration
}

// NewCliParams returns a Run with the defaults used by the CLI.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Interactive: true,
	}
}
