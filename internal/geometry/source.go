package geometry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-atlas/internal/logger"
	"rental-atlas/internal/metrics"
)

// ErrNotFound means a source does not hold the resource; a chain moves on.
var ErrNotFound = errors.New("geometry: resource not found")

// Resource addresses one geometry file. Object is both the file identity and
// the name of the object inside a TopoJSON document.
type Resource struct {
	Object string
}

func (r Resource) File() string { return r.Object + ".json" }

// RawSource returns the undecoded bytes of a resource.
type RawSource interface {
	Load(ctx context.Context, r Resource) ([]byte, error)
}

// FileSource reads <Dir>/<object>.json.
type FileSource struct {
	Dir string
}

func (s FileSource) Load(_ context.Context, r Resource) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.Dir, r.File()))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, r.File())
	}
	return b, err
}

// HTTPSource fetches <Base>/<object>.json.
type HTTPSource struct {
	Base   string
	Client *http.Client
}

func (s HTTPSource) Load(ctx context.Context, r Resource) ([]byte, error) {
	cl := s.Client
	if cl == nil {
		cl = &http.Client{Timeout: 15 * time.Second}
	}
	url := strings.TrimRight(s.Base, "/") + "/" + r.File()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geometry: GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// RedisSource is a read-through byte cache in front of Next.
// Redis errors are logged and bypassed; they never fail a load.
type RedisSource struct {
	Client *redis.Client
	Next   RawSource
	TTL    time.Duration
	Prefix string
}

func (s RedisSource) key(r Resource) string {
	p := s.Prefix
	if p == "" {
		p = "atlas:geometry:"
	}
	return p + r.Object
}

func (s RedisSource) Load(ctx context.Context, r Resource) ([]byte, error) {
	if s.Client == nil {
		return s.Next.Load(ctx, r)
	}
	k := s.key(r)
	if b, err := s.Client.Get(ctx, k).Bytes(); err == nil {
		metrics.GeometryCacheHitsTotal.WithLabelValues("redis").Inc()
		return b, nil
	} else if !errors.Is(err, redis.Nil) {
		logger.L().Warn("redis_get_error", "key", k, "err", err)
	}
	metrics.GeometryCacheMissesTotal.WithLabelValues("redis").Inc()
	b, err := s.Next.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := s.Client.Set(ctx, k, b, s.TTL).Err(); err != nil {
		logger.L().Warn("redis_set_error", "key", k, "err", err)
	}
	return b, nil
}

// ChainSource tries each source in order, skipping nil entries and moving on
// only when a source reports ErrNotFound.
type ChainSource struct {
	list []RawSource
}

func NewChainSource(list ...RawSource) *ChainSource {
	return &ChainSource{list: list}
}

func (c *ChainSource) Load(ctx context.Context, r Resource) ([]byte, error) {
	for _, s := range c.list {
		if s == nil {
			continue
		}
		b, err := s.Load(ctx, r)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, r.File())
}

// Loader decodes resources and keeps them in an LRU.
type Loader struct {
	src RawSource
	lru *LRU
}

func NewLoader(src RawSource, lru *LRU) *Loader {
	return &Loader{src: src, lru: lru}
}

// Fetch returns the decoded collection for r. It is safe for concurrent use.
func (l *Loader) Fetch(ctx context.Context, r Resource) (*Collection, error) {
	start := time.Now()
	defer func() { metrics.GeometryFetchDurationMs.Observe(float64(time.Since(start).Milliseconds())) }()
	if l.lru != nil {
		if c, ok := l.lru.Get(r.Object); ok {
			metrics.GeometryCacheHitsTotal.WithLabelValues("lru").Inc()
			return c, nil
		}
		metrics.GeometryCacheMissesTotal.WithLabelValues("lru").Inc()
	}
	b, err := l.src.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	c, err := Decode(b, r.Object)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.File(), err)
	}
	if l.lru != nil {
		l.lru.Set(r.Object, c)
	}
	logger.L().Debug("geometry_decoded", "object", r.Object, "regions", len(c.Regions))
	return c, nil
}
