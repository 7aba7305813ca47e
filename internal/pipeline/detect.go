package pipeline

import "context"

// TextDetector returns the LINE-level text of a stored PDF, joined by "\n".
type TextDetector interface {
	DetectText(ctx context.Context, bucket, key string) (string, error)
}
