package port

import "context"

// CompletionLedger is the durable, append-only record of fully processed
// videos. An entry exists iff every sampled frame of the video was uploaded.
type CompletionLedger interface {
	IsComplete(ctx context.Context, videoName string) (bool, error)
	// MarkComplete must be durable before returning. It is only ever called
	// after the video's last frame upload and scratch cleanup.
	MarkComplete(ctx context.Context, videoName string) error
}
