package version

import (
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}
	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "assetbuilder ") || !strings.Contains(s, Version) {
		t.Fatalf("unexpected version string %q", s)
	}
}
