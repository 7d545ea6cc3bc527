package version //nolint:testpackage // exercises unexported apply.

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetVersion(t *testing.T) {
	t.Helper()

	oldVersion, oldCommit, oldDate := Version, Commit, Date
	Version, Commit, Date = devel, unknown, unknown

	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })
}

func TestApply_FromBuildInfo(t *testing.T) {
	resetVersion(t)

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-03-01T10:20:30Z"},
		},
	})

	assert.Equal(t, "v1.4.0", Version)
	assert.Equal(t, "abc123", Commit)
	assert.Equal(t, "2026-03-01", Date)
}

func TestApply_KeepsLinkerValues(t *testing.T) {
	resetVersion(t)

	Version, Commit = "v9.9.9", "deadbeef"

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: "v1.0.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})

	assert.Equal(t, "v9.9.9", Version)
	assert.Equal(t, "deadbeef", Commit)
	assert.Equal(t, unknown, Date)
}

func TestApply_DevelBuild(t *testing.T) {
	resetVersion(t)

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.time", Value: "not-a-time"}},
	})

	assert.Equal(t, devel, Version)
	assert.Equal(t, "not-a-time", Date)
}
