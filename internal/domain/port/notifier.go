package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, to string, runID string, videoKey string, errorMsg string) error
}
