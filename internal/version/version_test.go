package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetShortVersion(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	defer func() { Version, GitCommit = oldVersion, oldCommit }()

	Version, GitCommit = "1.2.0", "0123456789abcdef"
	assert.Equal(t, "1.2.0 (0123456)", GetShortVersion())

	Version = "dev"
	assert.Equal(t, "dev-0123456", GetShortVersion())
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		parseBuildTime("2025-03-01T12:00:00Z").UTC())
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
