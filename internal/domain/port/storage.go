package port

import "context"

// ObjectStorage is the gateway to the bucket holding source videos and
// receiving frame images.
type ObjectStorage interface {
	// ListKeys returns every object key under the prefix, fully paginated.
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	Download(ctx context.Context, bucket, key, destPath string) error
	Upload(ctx context.Context, localPath, bucket, key, contentType string) error
}
