// Package config reads the dashboard settings from the environment. Every
// value has a default so a bare checkout runs against ./data.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rental-atlas/internal/logger"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Dataset is a CSV path, an http(s) URL, or "postgres".
	Dataset string

	GeometryDir     string
	GeometryURL     string
	GeometryBinding string
	GeometryTTL     time.Duration
	CacheSize       int
	RedisTTL        time.Duration

	Projection    string
	ColorFiltered bool
	ZoomMax       float64

	MetricsAddr string
	MetricsQPS  int

	SnapshotScope  string
	SnapshotOut    string
	SnapshotWidth  int
	SnapshotHeight int
}

// LoadEnvFiles loads .env from the working directory and data/env, first file
// wins. Missing files are ignored.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load reads the environment.
func Load() Config {
	c := Config{
		Dataset:         getEnv("ATLAS_DATASET", filepath.Join("data", "listings.csv")),
		GeometryDir:     getEnv("ATLAS_GEOMETRY_DIR", filepath.Join("data", "topojson")),
		GeometryURL:     os.Getenv("ATLAS_GEOMETRY_URL"),
		GeometryBinding: os.Getenv("ATLAS_GEOMETRY_BINDING"),
		GeometryTTL:     time.Duration(getEnvInt("ATLAS_GEOMETRY_CACHE_TTL_S", 600)) * time.Second,
		CacheSize:       getEnvInt("ATLAS_GEOMETRY_CACHE_SIZE", 32),
		RedisTTL:        time.Duration(getEnvInt("ATLAS_REDIS_TTL_S", 3600)) * time.Second,
		Projection:      getEnv("ATLAS_PROJECTION", "equal-earth"),
		ColorFiltered:   strings.EqualFold(os.Getenv("ATLAS_COLOR_SCALE"), "filtered"),
		ZoomMax:         getEnvFloat("ATLAS_ZOOM_MAX", 8),
		MetricsAddr:     os.Getenv("ATLAS_METRICS_ADDR"),
		MetricsQPS:      getEnvInt("ATLAS_METRICS_QPS", 20),
		SnapshotScope:   os.Getenv("ATLAS_SNAPSHOT_SCOPE"),
		SnapshotOut:     getEnv("ATLAS_SNAPSHOT_OUT", "atlas.svg"),
		SnapshotWidth:   getEnvInt("ATLAS_SNAPSHOT_WIDTH", 960),
		SnapshotHeight:  getEnvInt("ATLAS_SNAPSHOT_HEIGHT", 600),
	}
	logger.L().Debug("config_loaded", "dataset", c.Dataset, "geometry_dir", c.GeometryDir, "geometry_url", c.GeometryURL, "projection", c.Projection)
	return c
}

// FromPostgres reports whether listings come from the database.
func (c Config) FromPostgres() bool { return strings.EqualFold(c.Dataset, "postgres") }

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt falls back to def on parse errors and non-positive values.
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		logger.L().Warn("config_bad_int", "key", k, "value", v)
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
		logger.L().Warn("config_bad_float", "key", k, "value", v)
	}
	return def
}
