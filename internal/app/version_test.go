package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name                   string
		version, commit, built string
		want                   string
	}{
		{"release", "1.4.0", "0a1b2c3d", "2026-03-01T10:00:00Z", "1.4.0 (commit: 0a1b2c3d, built: 2026-03-01T10:00:00Z)"},
		{"long revision is shortened", "dev", "0123456789abcdef0123", "", "dev (commit: 0123456789ab, built: unknown)"},
		{"nothing stamped", "dev", "", "", "dev (commit: unknown, built: unknown)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.version, tt.commit, tt.built))
		})
	}
}

func TestBuildVersion_PrefersLdflags(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldV, oldC, oldB })

	Version, Commit, BuildTime = "2.0.0", "feedbeef", "today"
	assert.Equal(t, "2.0.0 (commit: feedbeef, built: today)", BuildVersion())
}
