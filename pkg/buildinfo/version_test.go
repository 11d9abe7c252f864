package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFrom(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		info       debug.BuildInfo
		wantVer    string
		wantCommit string
	}{
		{
			name:       "go install",
			version:    "dev",
			info:       debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}, Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}},
			wantVer:    "v0.3.1",
			wantCommit: "abc123",
		},
		{
			name:       "local build",
			version:    "dev",
			info:       debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVer:    "dev",
			wantCommit: "none",
		},
		{
			name:       "ldflags win",
			version:    "v1.0.0",
			info:       debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}},
			wantVer:    "v1.0.0",
			wantCommit: "none",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldV, oldC, oldD := Version, Commit, Date
			t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
			Version, Commit, Date = tt.version, "none", "unknown"

			fillFrom(&tt.info)
			if Version != tt.wantVer || Commit != tt.wantCommit {
				t.Errorf("got %s/%s, want %s/%s", Version, Commit, tt.wantVer, tt.wantCommit)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "studymap/") {
		t.Errorf("UserAgent() = %q", ua)
	}
}
