//go:build !darwin

package transcode

import (
	"context"

	"github.com/pkg/errors"

	"github.com/heicready/heicready/pkg/logging"
)

// SIPSTranscoder is a stub on platforms without a native HEIC/HEIF codec
// implementation, mirroring the teacher's own "unsupported platform" stub
// build pattern (e.g. watch_native_unsupported.go). Non-Darwin backends are
// an explicit Non-goal (spec.md §1).
type SIPSTranscoder struct{}

// NewSIPSTranscoder creates a stub Transcoder on unsupported platforms.
func NewSIPSTranscoder(_ *logging.Logger) *SIPSTranscoder {
	return &SIPSTranscoder{}
}

// Transcode always fails on unsupported platforms.
func (t *SIPSTranscoder) Transcode(_ context.Context, _, _ string, _ int) (Result, error) {
	return Result{}, errors.New("transcode: platform not supported (reference Transcoder is macOS-specific)")
}
