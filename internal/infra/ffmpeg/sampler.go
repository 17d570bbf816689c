package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/port"
	"go.uber.org/zap"
)

// Sampler drives ffmpeg with a select filter that keeps every Nth decoded
// frame. ffmpeg dumps the kept frames as numbered JPEGs into the scratch
// directory; the iterator then hands them out one at a time.
type Sampler struct {
	logger *zap.Logger
}

func NewSampler(logger *zap.Logger) *Sampler {
	return &Sampler{logger: logger}
}

func (s *Sampler) Extract(ctx context.Context, videoPath string, samplingRate int, scratchDir string) (port.FrameIterator, error) {
	if samplingRate < 1 {
		return nil, fmt.Errorf("sampling rate %d out of range", samplingRate)
	}

	pattern := filepath.Join(scratchDir, "frame_%06d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", selectFilter(samplingRate),
		"-vsync", "vfr",
		"-q:v", "2",
		"-y",
		pattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	paths, err := filepath.Glob(filepath.Join(scratchDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	sort.Strings(paths)

	s.logger.Debug("ffmpeg frame dump complete",
		zap.String("video", videoPath),
		zap.Int("frames", len(paths)),
	)

	return &dumpIterator{paths: paths, rate: samplingRate}, nil
}

// selectFilter keeps decoded ordinals where n mod rate == 0, so ordinal 0 is
// always kept.
func selectFilter(rate int) string {
	return fmt.Sprintf(`select=not(mod(n\,%d))`, rate)
}

type dumpIterator struct {
	paths []string
	rate  int
	pos   int
}

func (it *dumpIterator) Next(ctx context.Context) (*port.Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if it.pos >= len(it.paths) {
		return nil, io.EOF
	}

	frame := &port.Frame{
		Ordinal: it.pos * it.rate,
		Path:    it.paths[it.pos],
	}
	it.pos++
	return frame, nil
}

// Close removes frames the caller never consumed.
func (it *dumpIterator) Close() error {
	for ; it.pos < len(it.paths); it.pos++ {
		os.Remove(it.paths[it.pos])
	}
	return nil
}
