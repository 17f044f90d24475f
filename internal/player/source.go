package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/storage"
)

// HTTPStemSource fetches stems from the API's stem endpoint.
type HTTPStemSource struct {
	client  *http.Client
	baseURL string
}

func NewHTTPStemSource(baseURL string) *HTTPStemSource {
	return &HTTPStemSource{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (s *HTTPStemSource) Fetch(
	ctx context.Context,
	trackID int64,
	stem models.Stem,
) (io.ReadCloser, int64, error) {
	url := fmt.Sprintf("%s/api/stems/%d/%s", s.baseURL, trackID, stem)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, 0, storage.ErrNotFound
		}
		return nil, 0, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	return resp.Body, resp.ContentLength, nil
}

// StorageStemSource reads stems straight from a blob store, bypassing
// the API. Used by tests and local tooling.
type StorageStemSource struct {
	provider storage.Provider
	prefix   string
}

func NewStorageStemSource(provider storage.Provider, prefix string) *StorageStemSource {
	return &StorageStemSource{provider: provider, prefix: prefix}
}

func (s *StorageStemSource) Fetch(
	ctx context.Context,
	trackID int64,
	stem models.Stem,
) (io.ReadCloser, int64, error) {
	object, err := s.provider.Get(ctx, storage.StemKey(s.prefix, trackID, stem))
	if err != nil {
		return nil, 0, err
	}
	return object.Body, object.ContentLength, nil
}
