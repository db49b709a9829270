package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	Version = "1.2.3"
	Commit = "abc1234"
	BuildTime = "2024-01-15T10:00:00Z"

	if got := String(); got != "1.2.3 (abc1234) built 2024-01-15T10:00:00Z" {
		t.Errorf("String() = %q, want %q", got, "1.2.3 (abc1234) built 2024-01-15T10:00:00Z")
	}
}

func TestDefaultsNotEmpty(t *testing.T) {
	// ldflags may overwrite these in release builds, but they must never
	// be empty.
	if Version == "" || Commit == "" || BuildTime == "" {
		t.Errorf("version defaults = %q %q %q, want non-empty", Version, Commit, BuildTime)
	}
	if !strings.Contains(String(), "built") {
		t.Errorf("String() = %q, want the build time labelled", String())
	}
}
