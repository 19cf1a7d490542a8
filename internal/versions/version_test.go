package versions

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	noVCS := func() (string, string) { return "", "" }
	withVCS := func() (string, string) { return "0123456789abcdef", "2025-01-02T03:04:05Z" }

	tests := []struct {
		name          string
		version       string
		commit        string
		buildDate     string
		vcs           func() (string, string)
		wantVersion   string
		wantCommit    string
		wantBuildDate string
	}{
		{
			name:          "release build keeps ldflags",
			version:       "v1.4.0",
			commit:        "abc",
			buildDate:     "2025-06-01T10:00:00Z",
			vcs:           withVCS,
			wantVersion:   "v1.4.0",
			wantCommit:    "abc",
			wantBuildDate: "2025-06-01 10:00:00 UTC",
		},
		{
			name:          "dev build reads vcs settings",
			version:       "dev",
			commit:        unknownStr,
			buildDate:     unknownStr,
			vcs:           withVCS,
			wantVersion:   "build-01234567",
			wantCommit:    "0123456789abcdef",
			wantBuildDate: "2025-01-02 03:04:05 UTC",
		},
		{
			name:          "dev build without vcs",
			version:       "dev",
			commit:        unknownStr,
			buildDate:     unknownStr,
			vcs:           noVCS,
			wantVersion:   "dev",
			wantCommit:    unknownStr,
			wantBuildDate: unknownStr,
		},
		{
			name:          "unparseable build date is kept",
			version:       "v0.1.0",
			commit:        "abc",
			buildDate:     "yesterday",
			vcs:           noVCS,
			wantVersion:   "v0.1.0",
			wantCommit:    "abc",
			wantBuildDate: "yesterday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := versionInfo(tt.version, tt.commit, tt.buildDate, tt.vcs)
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantCommit, info.Commit)
			assert.Equal(t, tt.wantBuildDate, info.BuildDate)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.True(t, strings.Contains(info.Platform, "/"))
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()

	info := GetVersionInfo()
	require.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestRequire(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		constraint string
		version    string
		wantErr    error
		wantAnyErr bool
	}{
		{name: "no constraint", constraint: "", version: "v0.1.0"},
		{name: "satisfied", constraint: ">= 1.2", version: "v1.3.0"},
		{name: "satisfied range", constraint: ">= 1.0, < 2.0", version: "1.9.9"},
		{name: "too old", constraint: ">= 1.2", version: "v1.1.0", wantErr: ErrIncompatibleVersion},
		{name: "too new", constraint: "< 2.0", version: "2.0.0", wantErr: ErrIncompatibleVersion},
		{name: "dev builds always satisfy", constraint: ">= 99", version: "build-0123abcd"},
		{name: "invalid constraint", constraint: ">>> 1", version: "1.0.0", wantAnyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Require(tt.constraint, tt.version)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
