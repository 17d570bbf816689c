package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type VideoStatus string

const (
	VideoStatusCompleted VideoStatus = "COMPLETED"
	VideoStatusSkipped   VideoStatus = "SKIPPED"
	VideoStatusAbandoned VideoStatus = "ABANDONED"
)

// RunParams are the per-invocation parameters of a sampling run.
type RunParams struct {
	Bucket       string
	InputPrefix  string
	OutputPrefix string
	SamplingRate SamplingRate
}

func (p RunParams) Validate() error {
	if p.Bucket == "" {
		return errors.New("bucket is required")
	}
	if p.InputPrefix == "" {
		return errors.New("input prefix is required")
	}
	if p.OutputPrefix == "" {
		return errors.New("output prefix is required")
	}
	if p.SamplingRate < 1 {
		return ErrInvalidSamplingRate
	}
	return nil
}

// RunSummary counts the outcome of every candidate video in one run.
type RunSummary struct {
	RunID      uuid.UUID
	Candidates int
	Processed  int
	Skipped    int
	Abandoned  int
}

// VideoStatusEvent is published after each candidate video is resolved.
type VideoStatusEvent struct {
	RunID        uuid.UUID   `json:"run_id"`
	Bucket       string      `json:"bucket"`
	VideoKey     string      `json:"video_key"`
	VideoName    string      `json:"video_name"`
	Status       VideoStatus `json:"status"`
	FrameCount   int         `json:"frame_count,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}
