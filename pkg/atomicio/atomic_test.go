package atomicio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicProducesFinalFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.jpg")

	err := WriteAtomic(target, func(f *os.File) error {
		_, err := f.Write([]byte("payload"))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = os.Stat(TemporaryPath(target))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAtomicCleansUpOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.jpg")

	writeErr := errors.New("boom")
	err := WriteAtomic(target, func(f *os.File) error {
		return writeErr
	})
	require.Error(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(TemporaryPath(target))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTemporaryPath(t *testing.T) {
	assert.Equal(t, "/w/A.jpg.tmp", TemporaryPath("/w/A.jpg"))
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, IsTemporary("/w/A.jpg.tmp"))
	assert.False(t, IsTemporary("/w/A.jpg"))
}
