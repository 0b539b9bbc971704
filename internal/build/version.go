package build

import (
	"runtime"
	"runtime/debug"
)

// Commit and CommitHash are set via -ldflags at release build time; when
// empty (a `go run`/`go build` invocation without ldflags) GoVersion and
// the VCS fields from debug.ReadBuildInfo fill in for local development.
var (
	// Commit is the full commit description set by the release tooling,
	// e.g. "v0.1.0-3-g1234abcd".
	Commit string

	// CommitHash is the raw VCS commit hash, used as a fallback when
	// Commit is unset.
	CommitHash string
)

// GoVersion is the Go toolchain version this binary was built with.
var GoVersion = runtime.Version()

// Version returns the module version reported by the Go runtime's build
// info, or "unknown" if it could not be determined (e.g. a binary built
// without module mode).
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func init() {
	if CommitHash != "" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			CommitHash = setting.Value
			return
		}
	}
}
