package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIDAndOrdersNewestFirst(t *testing.T) {
	r := NewRing()
	first := r.Append(Entry{Result: ResultSuccess, SourcePath: "/w/a.heic"})
	second := r.Append(Entry{Result: ResultSuccess, SourcePath: "/w/b.heic"})

	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	recent := r.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "/w/b.heic", recent[0].SourcePath)
	assert.Equal(t, "/w/a.heic", recent[1].SourcePath)
}

func TestAppendTruncatesAtCapacity(t *testing.T) {
	r := NewRing()
	for i := 0; i < Capacity+5; i++ {
		r.Append(Entry{Result: ResultInfo})
	}
	assert.Len(t, r.Recent(), Capacity)
}

func TestSubscribeReceivesAppendedEntry(t *testing.T) {
	r := NewRing()
	ch := r.Subscribe()

	entry := r.Append(Entry{Result: ResultSuccess, SourcePath: "/w/a.heic"})

	received := <-ch
	assert.Equal(t, entry.ID, received.ID)
}
