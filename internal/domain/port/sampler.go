package port

import "context"

// Frame is one emitted frame: its decoded ordinal and the local JPEG the
// sampler wrote for it. The caller owns the file once Next returns.
type Frame struct {
	Ordinal int
	Path    string
}

// FrameIterator yields emitted frames in strictly increasing ordinal order.
// Next returns io.EOF when the video has no more decodable frames. Iterators
// are not restartable; Extract again to re-read a video.
type FrameIterator interface {
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// FrameSampler opens a local video and emits every Nth decoded frame,
// writing each emitted frame as a JPEG under scratchDir.
type FrameSampler interface {
	Extract(ctx context.Context, videoPath string, samplingRate int, scratchDir string) (FrameIterator, error)
}
