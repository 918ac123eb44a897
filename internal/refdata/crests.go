package refdata

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCrestCacheSize = 64
	DefaultCrestTTL       = 24 * time.Hour
)

// CrestSource fetches a club crest image by team code.
type CrestSource interface {
	Crest(ctx context.Context, teamCode int) ([]byte, string, error)
}

// Crest is a cached image.
type Crest struct {
	Data        []byte
	ContentType string
}

// Crests caches crest images in a bounded, expiring LRU.
type Crests struct {
	src   CrestSource
	cache *expirable.LRU[int, Crest]
	group singleflight.Group
}

// NewCrests creates a crest cache holding at most size images for ttl each.
func NewCrests(src CrestSource, size int, ttl time.Duration) *Crests {
	if size <= 0 {
		size = DefaultCrestCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCrestTTL
	}
	return &Crests{
		src:   src,
		cache: expirable.NewLRU[int, Crest](size, nil, ttl),
	}
}

// Get returns the crest for teamCode, fetching it on a miss.
func (c *Crests) Get(ctx context.Context, teamCode int) (Crest, error) {
	if crest, ok := c.cache.Get(teamCode); ok {
		return crest, nil
	}
	// The fetch outlives a cancelled caller so others waiting on it still get the image.
	ch := c.group.DoChan(strconv.Itoa(teamCode), func() (any, error) {
		data, contentType, err := c.src.Crest(context.WithoutCancel(ctx), teamCode)
		if err != nil {
			return Crest{}, err
		}
		crest := Crest{Data: data, ContentType: contentType}
		c.cache.Add(teamCode, crest)
		return crest, nil
	})
	select {
	case <-ctx.Done():
		return Crest{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Crest{}, res.Err
		}
		return res.Val.(Crest), nil
	}
}

// Len returns the number of cached crests.
func (c *Crests) Len() int {
	return c.cache.Len()
}
