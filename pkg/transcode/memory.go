package transcode

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"sync"
)

// MemoryTranscoder is a deterministic Transcoder test double: it ignores
// the source file's actual bytes and encodes a small, valid JPEG using the
// standard library's image/jpeg package. It exists so that worker-pool and
// controller tests can exercise the full pipeline without depending on
// macOS or a real HEIC decoder, per the design note in spec.md §9.
//
// It optionally fails deterministically for configured source paths, to
// exercise the worker pool's error-handling branches.
type MemoryTranscoder struct {
	mu        sync.Mutex
	failWith  map[string]error
	callCount int
}

// NewMemoryTranscoder creates a MemoryTranscoder with no configured
// failures.
func NewMemoryTranscoder() *MemoryTranscoder {
	return &MemoryTranscoder{failWith: make(map[string]error)}
}

// FailFor configures the transcoder to return err whenever sourcePath is
// transcoded.
func (m *MemoryTranscoder) FailFor(sourcePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith[sourcePath] = err
}

// CallCount returns the number of times Transcode has been invoked.
func (m *MemoryTranscoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Transcode implements Transcoder.Transcode.
func (m *MemoryTranscoder) Transcode(_ context.Context, sourcePath, targetPath string, quality int) (Result, error) {
	m.mu.Lock()
	m.callCount++
	failErr := m.failWith[sourcePath]
	m.mu.Unlock()

	if failErr != nil {
		return Result{}, failErr
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}

	f, err := os.Create(targetPath)
	if err != nil {
		return Result{}, &Error{Kind: KindEncodeFailed, Message: err.Error()}
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: clampQuality(quality)}); err != nil {
		return Result{}, &Error{Kind: KindEncodeFailed, Message: err.Error()}
	}

	info, err := f.Stat()
	if err != nil {
		return Result{}, &Error{Kind: KindEncodeFailed, Message: err.Error()}
	}

	return Result{BytesWritten: info.Size()}, nil
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
