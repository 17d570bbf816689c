package entity

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// VideoKey is the full object key of a source video inside the bucket.
type VideoKey string

// Name returns the extension-inclusive basename of the key. Ledger entries
// and output frame names are derived from it.
func (k VideoKey) Name() string {
	return path.Base(string(k))
}

var ErrInvalidSamplingRate = errors.New("sampling rate must be at least 1")

// SamplingRate keeps every Nth decoded frame. A rate of 1 keeps all frames.
type SamplingRate int

func NewSamplingRate(n int) (SamplingRate, error) {
	if n < 1 {
		return 0, ErrInvalidSamplingRate
	}
	return SamplingRate(n), nil
}

// Emits reports whether the frame at the given decoded ordinal is kept.
// Ordinal 0 is always kept.
func (r SamplingRate) Emits(ordinal int) bool {
	return ordinal%int(r) == 0
}

// EmittedCount returns how many frames sampling produces for a video with
// the given number of decodable frames.
func (r SamplingRate) EmittedCount(decoded int) int {
	if decoded <= 0 {
		return 0
	}
	return (decoded + int(r) - 1) / int(r)
}

func (r SamplingRate) Int() int { return int(r) }

// FrameRecord identifies one emitted frame of a video. Index is the 0-based
// position among emitted frames, not the decoded-frame ordinal.
type FrameRecord struct {
	VideoName string
	Index     int
}

// ObjectKey returns the destination key for the frame image.
func (f FrameRecord) ObjectKey(outputPrefix string) string {
	return fmt.Sprintf("%s/%s_frame_%d.jpg", strings.TrimSuffix(outputPrefix, "/"), f.VideoName, f.Index)
}
