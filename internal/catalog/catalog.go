package catalog

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"time"

	"multitunes/internal/database"
	"multitunes/internal/storage"

	logger "github.com/Bparsons0904/goLogger"
)

const preparedSetKey = "catalog:prepared"

// stemKeyPattern matches blob keys of the form <prefix><trackID>/<stem>.mp3.
var stemKeyPattern = regexp.MustCompile(`(\d+)/[a-z]+\.mp3$`)

// Prepared owns the set of track ids with prepared stem audio. The set
// is derived by listing the stem blob store, held in memory with a TTL,
// and mirrored into a Valkey set so sibling API instances can reuse one
// listing instead of each walking the bucket.
type Prepared struct {
	provider storage.Provider
	cache    database.CacheClient
	prefix   string
	ttl      time.Duration
	log      logger.Logger

	mu        sync.RWMutex
	ids       map[int64]struct{}
	expiresAt time.Time

	now func() time.Time
}

func NewPrepared(
	provider storage.Provider,
	cache database.CacheClient,
	prefix string,
	ttl time.Duration,
) *Prepared {
	return &Prepared{
		provider: provider,
		cache:    cache,
		prefix:   prefix,
		ttl:      ttl,
		log:      logger.New("catalog"),
		now:      time.Now,
	}
}

// TrackIDs returns the prepared track ids, refreshing from the mirror or
// the blob store when the in-memory copy has expired.
func (p *Prepared) TrackIDs(ctx context.Context) (map[int64]struct{}, error) {
	p.mu.RLock()
	if p.ids != nil && p.now().Before(p.expiresAt) {
		ids := p.ids
		p.mu.RUnlock()
		return ids, nil
	}
	p.mu.RUnlock()

	return p.refresh(ctx, false)
}

// Has reports whether the track has prepared stem audio.
func (p *Prepared) Has(ctx context.Context, trackID int64) (bool, error) {
	ids, err := p.TrackIDs(ctx)
	if err != nil {
		return false, err
	}
	_, ok := ids[trackID]
	return ok, nil
}

// Refresh drops every cached layer and relists the blob store. Exposed
// as the manual invalidation hook for ingestion flows that just uploaded
// new stems.
func (p *Prepared) Refresh(ctx context.Context) error {
	_, err := p.refresh(ctx, true)
	return err
}

func (p *Prepared) refresh(ctx context.Context, force bool) (map[int64]struct{}, error) {
	log := p.log.Function("refresh")

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if !force && p.ids != nil && p.now().Before(p.expiresAt) {
		return p.ids, nil
	}

	if !force && p.cache != nil {
		if ids := p.fromMirror(ctx); len(ids) > 0 {
			p.ids = ids
			p.expiresAt = p.now().Add(p.ttl)
			return ids, nil
		}
	}

	keys, err := p.provider.List(ctx, p.prefix)
	if err != nil {
		return nil, log.Err("failed to list stem storage", err, "prefix", p.prefix)
	}

	ids := make(map[int64]struct{})
	for _, key := range keys {
		match := stemKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}

	p.ids = ids
	p.expiresAt = p.now().Add(p.ttl)
	p.toMirror(ctx, ids)

	log.Info("Prepared catalog refreshed", "trackCount", len(ids))
	return ids, nil
}

func (p *Prepared) fromMirror(ctx context.Context) map[int64]struct{} {
	log := p.log.Function("fromMirror")

	members, err := database.NewCacheBuilder(p.cache, preparedSetKey).
		WithContext(ctx).
		GetSetMembers()
	if err != nil {
		log.Warn("Failed to read prepared set mirror", "error", err)
		return nil
	}

	ids := make(map[int64]struct{}, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}

	return ids
}

func (p *Prepared) toMirror(ctx context.Context, ids map[int64]struct{}) {
	log := p.log.Function("toMirror")

	if p.cache == nil || len(ids) == 0 {
		return
	}

	members := make([]string, 0, len(ids))
	for id := range ids {
		members = append(members, strconv.FormatInt(id, 10))
	}

	builder := database.NewCacheBuilder(p.cache, preparedSetKey).WithContext(ctx)
	if err := builder.Delete(); err != nil {
		log.Warn("Failed to reset prepared set mirror", "error", err)
		return
	}
	if err := builder.WithMembers(members).SetSadd(); err != nil {
		log.Warn("Failed to write prepared set mirror", "error", err)
	}
}
