package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBuild(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	})
}

func TestGetInfo(t *testing.T) {
	setBuild(t, "1.0.0", "abc123def456", "2024-10-31T12:00:00Z")

	info := GetInfo()
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "abc123def456", info.Commit)
	assert.Equal(t, "2024-10-31T12:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "1.0.0", info.Short())
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{"long commit is shortened", "abc123def456", "(abc123de)"},
		{"short commit kept", "abc", "(abc)"},
		{"unknown commit", "unknown", "(unknown)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuild(t, "0.3.1", tt.commit, "2024-10-31")
			s := GetInfo().String()
			assert.Contains(t, s, "scarepick 0.3.1")
			assert.Contains(t, s, tt.want)
			assert.Contains(t, s, "built 2024-10-31")
		})
	}
}

func TestInfoJSON(t *testing.T) {
	setBuild(t, "dev", "unknown", "unknown")

	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "dev", got["version"])
	assert.Contains(t, got, "go_version")
	assert.Contains(t, got, "platform")
}
