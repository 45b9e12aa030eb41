package utils

import (
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"rental-atlas/internal/logger"
)

func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv returns nil when REDIS_HOST is unset; the geometry cache
// then runs without its shared layer. A bad REDIS_DB falls back to 0.
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	addr := host + ":" + envOr("REDIS_PORT", "6379")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, _ := strconv.Atoi(v); n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
