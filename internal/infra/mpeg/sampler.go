package mpeg

import (
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	mpeglib "github.com/gen2brain/mpeg"

	"github.com/JHorcasitas/cdmx-pothole-detection/internal/domain/port"
)

// Sampler decodes MPEG-1 video in process, without an ffmpeg binary. Frames
// are decoded lazily: nothing past the next emitted frame is touched until
// the caller asks for it.
type Sampler struct{}

func NewSampler() *Sampler {
	return &Sampler{}
}

func (s *Sampler) Extract(ctx context.Context, videoPath string, samplingRate int, scratchDir string) (port.FrameIterator, error) {
	if samplingRate < 1 {
		return nil, fmt.Errorf("sampling rate %d out of range", samplingRate)
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}

	mpg, err := mpeglib.New(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open decoder: %w", err)
	}

	return &decodeIterator{
		file: file,
		mpg:  mpg,
		rate: samplingRate,
		dir:  scratchDir,
	}, nil
}

type decodeIterator struct {
	file    *os.File
	mpg     *mpeglib.MPEG
	rate    int
	dir     string
	ordinal int
	emitted int
}

func (it *decodeIterator) Next(ctx context.Context) (*port.Frame, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if it.mpg.HasEnded() {
			return nil, io.EOF
		}

		frame := it.mpg.DecodeVideo()
		if frame == nil {
			continue
		}

		ordinal := it.ordinal
		it.ordinal++
		if ordinal%it.rate != 0 {
			continue
		}

		path := filepath.Join(it.dir, fmt.Sprintf("frame_%06d.jpg", it.emitted))
		if err := writeJPEG(path, frame); err != nil {
			return nil, fmt.Errorf("frame %d: %w", ordinal, err)
		}
		it.emitted++

		return &port.Frame{Ordinal: ordinal, Path: path}, nil
	}
}

func (it *decodeIterator) Close() error {
	return it.file.Close()
}

func writeJPEG(path string, frame *mpeglib.Frame) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := jpeg.Encode(w, frame.YCbCr(), nil); err != nil {
		w.Close()
		os.Remove(path)
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}
	return nil
}
