package blob

import (
	"context"
	"io"
)

// Storage stores binary objects (artwork samples) and serves them publicly.
type Storage interface {
	// Upload stores the object under key and returns its public URL.
	// There is no retry; a failed upload leaves no object behind.
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
