package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ATLAS_DATASET", "ATLAS_PROJECTION", "ATLAS_COLOR_SCALE", "ATLAS_ZOOM_MAX", "ATLAS_GEOMETRY_CACHE_SIZE"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Dataset != filepath.Join("data", "listings.csv") || c.Projection != "equal-earth" || c.ZoomMax != 8 || c.CacheSize != 32 {
		t.Errorf("defaults = %+v", c)
	}
	if c.ColorFiltered || c.FromPostgres() {
		t.Errorf("unexpected flags %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ATLAS_DATASET", "POSTGRES")
	t.Setenv("ATLAS_COLOR_SCALE", "filtered")
	t.Setenv("ATLAS_ZOOM_MAX", "12")
	t.Setenv("ATLAS_GEOMETRY_CACHE_TTL_S", "5")
	t.Setenv("ATLAS_GEOMETRY_CACHE_SIZE", "-3")
	c := Load()
	if !c.FromPostgres() || !c.ColorFiltered || c.ZoomMax != 12 || c.GeometryTTL != 5*time.Second {
		t.Errorf("overrides = %+v", c)
	}
	if c.CacheSize != 32 {
		t.Errorf("CacheSize = %d, want fallback 32", c.CacheSize)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(".env", []byte("ATLAS_TEST_FROM_DOTENV=yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATLAS_TEST_FROM_DOTENV", "")
	os.Unsetenv("ATLAS_TEST_FROM_DOTENV")
	LoadEnvFiles()
	if got := os.Getenv("ATLAS_TEST_FROM_DOTENV"); got != "yes" {
		t.Errorf("dotenv value = %q", got)
	}
}
