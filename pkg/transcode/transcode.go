// Package transcode defines the Transcoder capability boundary (spec.md
// §4.5): decoding a HEIC/HEIF source and encoding it as a JPEG at a given
// quality, with EXIF orientation baked into pixels.
package transcode

import (
	"context"
)

// Kind classifies a transcode failure, matching the error kinds named in
// spec.md §7.
type Kind string

const (
	KindDecodeFailed       Kind = "decode_failed"
	KindEncodeFailed       Kind = "encode_failed"
	KindMetadataReadFailed Kind = "metadata_read_failed"
)

// Error wraps a transcode failure with its Kind so callers (the worker
// pool) can select the matching activity.Reason without string matching.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Result describes a successful transcode.
type Result struct {
	// BytesWritten is the size of the encoded JPEG.
	BytesWritten int64
}

// Transcoder decodes a HEIC/HEIF file and encodes it as a JPEG. A
// conforming implementation applies EXIF orientation to pixels (so the
// output has orientation 1/identity), carries forward non-orientation
// metadata on a best-effort basis, preserves the source color profile
// (falling back to sRGB), and encodes at the requested quality (0 smallest,
// 100 highest fidelity).
//
// Exposed as a single-method interface per spec.md §9's design note, so
// tests can substitute a deterministic fake without depending on the host
// OS image stack.
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath, targetPath string, quality int) (Result, error)
}
