package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.26.0",
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}

	info := fromBuildInfo(Info{Version: "1.2.0"}, read)
	if info.Commit != "0123456" {
		t.Errorf("expected short commit, got %q", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
	if !info.Dirty || info.IsRelease() {
		t.Error("modified tree must be dirty and not a release")
	}
	if got := info.Short(); got != "1.2.0-0123456-dirty" {
		t.Errorf("Short() = %q", got)
	}
	if got := info.String(); got != "1.2.0-0123456-dirty (built 2026-01-02T03:04:05Z) go1.26.0" {
		t.Errorf("String() = %q", got)
	}
}

func TestFromBuildInfo_LinkerValuesWin(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}}}, true
	}
	info := fromBuildInfo(Info{Version: "2.0.0", Commit: "abc"}, read)
	if info.Commit != "abc" {
		t.Errorf("expected linker commit, got %q", info.Commit)
	}
	if !info.IsRelease() {
		t.Error("expected release build")
	}
}

func TestFromBuildInfo_Unavailable(t *testing.T) {
	info := fromBuildInfo(Info{Version: "dev"}, func() (*debug.BuildInfo, bool) { return nil, false })
	if info.Short() != "dev" {
		t.Errorf("Short() = %q", info.Short())
	}
	if info.IsRelease() {
		t.Error("dev build is not a release")
	}
}
