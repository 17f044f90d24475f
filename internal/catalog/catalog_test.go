package catalog

import (
	"context"
	"io"
	"testing"
	"time"

	"multitunes/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	keys      []string
	listCalls int
}

func (f *fakeProvider) List(ctx context.Context, prefix string) ([]string, error) {
	f.listCalls++
	return f.keys, nil
}

func (f *fakeProvider) Get(ctx context.Context, key string) (*storage.Object, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeProvider) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (f *fakeProvider) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func newTestCatalog(provider *fakeProvider, ttl time.Duration) (*Prepared, *time.Time) {
	prepared := NewPrepared(provider, nil, "stems/", ttl)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	prepared.now = func() time.Time { return now }
	return prepared, &now
}

func TestTrackIDsParsesStemKeys(t *testing.T) {
	provider := &fakeProvider{keys: []string{
		"stems/100/drums.mp3",
		"stems/100/vocals.mp3",
		"stems/100/piano.mp3",
		"stems/250/other.mp3",
		"stems/250/bass.mp3",
		"stems/junk.txt",
		"stems/notanumber/guitar.mp3",
	}}
	prepared, _ := newTestCatalog(provider, time.Hour)

	ids, err := prepared.TrackIDs(context.Background())
	require.NoError(t, err)

	assert.Len(t, ids, 2)
	assert.Contains(t, ids, int64(100))
	assert.Contains(t, ids, int64(250))
}

func TestTrackIDsCachesUntilTTL(t *testing.T) {
	provider := &fakeProvider{keys: []string{"stems/1/drums.mp3"}}
	prepared, now := newTestCatalog(provider, time.Hour)
	ctx := context.Background()

	_, err := prepared.TrackIDs(ctx)
	require.NoError(t, err)
	_, err = prepared.TrackIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.listCalls, "second lookup should hit the in-memory copy")

	*now = now.Add(2 * time.Hour)
	_, err = prepared.TrackIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.listCalls, "expired copy should trigger a relist")
}

func TestRefreshForcesRelist(t *testing.T) {
	provider := &fakeProvider{keys: []string{"stems/1/drums.mp3"}}
	prepared, _ := newTestCatalog(provider, time.Hour)
	ctx := context.Background()

	_, err := prepared.TrackIDs(ctx)
	require.NoError(t, err)

	provider.keys = append(provider.keys, "stems/2/drums.mp3")
	require.NoError(t, prepared.Refresh(ctx))

	ids, err := prepared.TrackIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 2, provider.listCalls)
}

func TestHas(t *testing.T) {
	provider := &fakeProvider{keys: []string{"stems/7/vocals.mp3"}}
	prepared, _ := newTestCatalog(provider, time.Hour)

	ok, err := prepared.Has(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = prepared.Has(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, ok)
}
