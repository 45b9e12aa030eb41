// Package app wires configuration, the dataset, the geometry loader and the
// drill-down machine together for the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-atlas/internal/config"
	"rental-atlas/internal/drill"
	"rental-atlas/internal/geometry"
	"rental-atlas/internal/ingest"
	"rental-atlas/internal/listing"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/metrics"
	"rental-atlas/internal/middleware"
	"rental-atlas/internal/migrate"
	"rental-atlas/internal/projection"
	"rental-atlas/internal/render"
	"rental-atlas/internal/store"
	"rental-atlas/internal/utils"
	"rental-atlas/internal/views"
)

// App is a ready dashboard: the machine plus the surface and board it drives.
type App struct {
	Config  config.Config
	Rows    []listing.Listing
	Loader  *geometry.Loader
	Machine *drill.Machine
	Surface *render.Surface
	Board   *views.Board

	redis   *redis.Client
	metrics *http.Server
}

// LoadRows reads the dataset named by cfg.
func LoadRows(ctx context.Context, cfg config.Config) ([]listing.Listing, error) {
	if !cfg.FromPostgres() {
		return ingest.Load(ctx, cfg.Dataset, nil)
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	rows, err := store.AttachDB(db).LoadListings(ctx)
	if err != nil {
		return nil, err
	}
	metrics.DatasetRowsLoaded.Set(float64(len(rows)))
	logger.L().Info("dataset_loaded", "src", "postgres", "rows", len(rows))
	return rows, nil
}

// NewLoader builds LRU -> Redis (optional) -> file dir -> HTTP base (optional).
func NewLoader(cfg config.Config, rc *redis.Client) *geometry.Loader {
	chain := []geometry.RawSource{geometry.FileSource{Dir: cfg.GeometryDir}}
	if cfg.GeometryURL != "" {
		chain = append(chain, geometry.HTTPSource{Base: cfg.GeometryURL, Client: &http.Client{Timeout: 15 * time.Second}})
	}
	src := geometry.RedisSource{Client: rc, Next: geometry.NewChainSource(chain...), TTL: cfg.RedisTTL}
	return geometry.NewLoader(src, geometry.NewLRU(cfg.CacheSize, int(cfg.GeometryTTL.Seconds())))
}

// Binding returns the override file's table or the built-in one.
func Binding(cfg config.Config) (geometry.Binding, error) {
	if cfg.GeometryBinding == "" {
		return geometry.DefaultBinding(), nil
	}
	return geometry.LoadBinding(cfg.GeometryBinding)
}

// New assembles an App over rows on a w x h surface. Start has not run yet.
func New(ctx context.Context, cfg config.Config, rows []listing.Listing, w, h float64) (*App, error) {
	l := logger.L()
	proj, err := projection.ByName(cfg.Projection)
	if err != nil {
		return nil, fmt.Errorf("projection %q: %w", cfg.Projection, err)
	}
	b, err := Binding(cfg)
	if err != nil {
		return nil, err
	}
	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		_ = rc.Close()
		rc = nil
	} else {
		l.Info("redis_ping_ok")
	}

	a := &App{
		Config:  cfg,
		Rows:    rows,
		Loader:  NewLoader(cfg, rc),
		Surface: render.NewSurface(w, h, cfg.ZoomMax),
		Board:   views.NewBoard(),
		redis:   rc,
	}
	color := drill.ColorUnfiltered
	if cfg.ColorFiltered {
		color = drill.ColorFiltered
	}
	a.Machine, err = drill.New(drill.Deps{
		Rows:       rows,
		Binding:    b,
		Fetcher:    a.Loader,
		Surface:    a.Surface,
		Board:      a.Board,
		Projection: proj,
		Color:      color,
		Logger:     l,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr, cfg.MetricsQPS)
	}
	return a, nil
}

func (a *App) serveMetrics(addr string, qps int) {
	l := logger.L()
	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.RateLimit(qps, logger.AccessMiddleware(l)(metrics.Handler())))
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		l.Info("metrics_listen", "addr", addr)
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics_listen_error", "err", err)
		}
	}()
}

// Close stops the metrics listener and the Redis client.
func (a *App) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
