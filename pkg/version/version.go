// Package version exposes build metadata of the running sortscope binary.
package version

import (
	"runtime/debug"
	"time"
)

const (
	unknown = "<unknown>"
	devel   = "dev"
)

// Build metadata. Release builds set these with
// -ldflags "-X github.com/Sumatoshi-tech/sortscope/pkg/version.Version=...".
var (
	Version = devel
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills metadata the linker did not set from the module
// build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == devel && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown && setting.Value != "" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown && setting.Value != "" {
				Date = normalizeDate(setting.Value)
			}
		}
	}
}

func normalizeDate(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}

	return parsed.UTC().Format(time.DateOnly)
}
