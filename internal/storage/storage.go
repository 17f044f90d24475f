package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"multitunes/internal/models"
)

// ErrNotFound is returned when the requested object does not exist in
// the backing store.
var ErrNotFound = errors.New("object not found")

// Provider is the behavior any stem blob backend must expose: prefix
// listing for catalog discovery and streamed reads for playback.
type Provider interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Object is the provider-agnostic representation of a stored file.
// ContentLength is always populated so callers can report download
// progress against a known total.
type Object struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}

// StemKey builds the conventional blob key for a track's stem:
// <prefix><trackID>/<stem>.mp3.
func StemKey(prefix string, trackID int64, stem models.Stem) string {
	return fmt.Sprintf("%s%d/%s.mp3", prefix, trackID, stem)
}
