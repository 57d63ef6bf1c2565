package storage

import (
	"context"
	"io"
)

// FeedFetcher retrieves an operator-published feed object by key.
type FeedFetcher interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}
