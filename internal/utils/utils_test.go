package utils

import "testing"

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{}, "postgres://postgres@localhost:5432/rental_atlas?sslmode=disable"},
		{map[string]string{"PG_USER": "atlas", "PG_PASSWORD": "s3cret", "PG_HOST": "db", "PG_DB": "listings", "PG_SSLMODE": "require"},
			"postgres://atlas:s3cret@db:5432/listings?sslmode=require"},
	}
	for _, c := range cases {
		for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
			t.Setenv(k, c.env[k])
		}
		if got := BuildPostgresDSNFromEnv(); got != c.want {
			t.Errorf("BuildPostgresDSNFromEnv() = %q, want %q", got, c.want)
		}
	}
}

func TestOpenRedisFromEnvDisabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	if c := OpenRedisFromEnv(); c != nil {
		t.Errorf("client = %v, want nil without REDIS_HOST", c)
	}
	if c := OpenRedis("", ""); c != nil {
		t.Errorf("OpenRedis(\"\") = %v, want nil", c)
	}
}
