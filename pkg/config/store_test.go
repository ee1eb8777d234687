package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetReturnsLatestSet(t *testing.T) {
	s := NewStore(Default())
	assert.False(t, s.Get().Paused)

	next := Default()
	next.Paused = true
	s.Set(next)

	assert.True(t, s.Get().Paused)
}
