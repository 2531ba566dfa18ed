package redis

import (
	"context"
	"errors"
	"time"

	"github.com/stvt-hub/stvt-training-hub/internal/application/query"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/project"
)

// ProjectCache implements query.ProjectCache on top of the generic Redis Cache.
// Listings are stored per branch under a short TTL; a stale entry only delays
// a free-slot count, never the reservation itself.
type ProjectCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewProjectCache creates a new ProjectCache with the default listing TTL.
func NewProjectCache(cache *Cache) *ProjectCache {
	return &ProjectCache{
		cache: cache,
		ttl:   TTLProjectListing,
	}
}

// GetAvailable returns the cached listing for a branch, or a miss.
// Connection errors surface to the caller; the query layer treats any
// error as a miss and reads through to the source of truth.
func (p *ProjectCache) GetAvailable(ctx context.Context, branch string) ([]*project.Project, bool, error) {
	var projects []*project.Project
	key := ProjectListingKey(branch)
	if err := p.cache.Get(ctx, key, &projects); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return projects, true, nil
}

// SetAvailable stores the listing for a branch under the listing TTL.
func (p *ProjectCache) SetAvailable(ctx context.Context, branch string, projects []*project.Project) error {
	if projects == nil {
		projects = []*project.Project{}
	}
	return p.cache.Set(ctx, ProjectListingKey(branch), projects, p.ttl)
}

// InvalidateAvailable drops the cached listing for a branch.
// Called after any mutation that changes slot counts for the branch.
func (p *ProjectCache) InvalidateAvailable(ctx context.Context, branch string) error {
	return p.cache.Delete(ctx, ProjectListingKey(branch))
}

// InvalidateAll clears every cached project listing.
func (p *ProjectCache) InvalidateAll(ctx context.Context) error {
	return p.cache.DeleteByPattern(ctx, PrefixProject+"*")
}

var _ query.ProjectCache = (*ProjectCache)(nil)
