// Package version reports build information for interviewkit binaries.
// Version variables can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/AltairaLabs/interviewkit/runtime/version.version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	devVersion     = "dev"
	shortCommitLen = 7
	vcsRevisionKey = "vcs.revision"
	vcsModifiedKey = "vcs.modified"
)

// Build-time variables, overridden with -ldflags.
var (
	version   = devVersion
	gitCommit = ""
	buildDate = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is structured build information.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Dirty   bool   `json:"dirty,omitempty"`
	Built   string `json:"built,omitempty"`
}

// GetVersion returns the current version string.
// It falls back to module build info when no ldflags version was set.
func GetVersion() string {
	if version != devVersion {
		return version
	}
	if info, ok := readBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return devVersion
}

// Get returns the full build information.
func Get() Info {
	info := Info{Version: GetVersion(), Commit: gitCommit, Built: buildDate}
	if info.Commit != "" {
		return info
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case vcsRevisionKey:
			info.Commit = s.Value[:min(shortCommitLen, len(s.Value))]
		case vcsModifiedKey:
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// GetVersionInfo returns a multi-line description for the version command.
func GetVersionInfo() string {
	info := Get()

	var b strings.Builder
	fmt.Fprintf(&b, "interviewer version %s", info.Version)
	if info.Commit != "" {
		fmt.Fprintf(&b, "\ncommit: %s", info.Commit)
		if info.Dirty {
			b.WriteString(" (dirty)")
		}
	}
	if info.Built != "" {
		fmt.Fprintf(&b, "\nbuilt: %s", info.Built)
	}
	return b.String()
}

// GetBuildInfo returns version details as slog attributes.
func GetBuildInfo() []any {
	info := Get()
	attrs := []any{"version", info.Version}
	if info.Commit != "" {
		attrs = append(attrs, "commit", info.Commit)
	}
	if info.Dirty {
		attrs = append(attrs, "dirty", true)
	}
	if info.Built != "" {
		attrs = append(attrs, "built", info.Built)
	}
	return attrs
}
