package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameToLevel(t *testing.T) {
	tests := []struct {
		name   string
		want   Level
		wantOK bool
	}{
		{"disabled", LevelDisabled, true},
		{"error", LevelError, true},
		{"warn", LevelWarn, true},
		{"info", LevelInfo, true},
		{"debug", LevelDebug, true},
		{"bogus", LevelDisabled, false},
		{"", LevelDisabled, false},
	}
	for _, tt := range tests {
		got, ok := NameToLevel(tt.name)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "disabled", LevelDisabled.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "unknown", Level(255).String())
}

func TestSetLevelGatesLogger(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelError)
	assert.Equal(t, LevelError, CurrentLevel())
	assert.False(t, enabled(LevelWarn))
	assert.True(t, enabled(LevelError))

	SetLevel(LevelDebug)
	assert.True(t, enabled(LevelInfo))
	assert.True(t, enabled(LevelDebug))
}
