// Package redis connects to Redis with go-redis/v9.
//
// Connect parses a redis:// URL and retries until the server is reachable.
// The returned client backs the shared cache (see pkg/cache.RedisStore) used
// for tenant and module lookups. Healthcheck adapts a client into a
// readiness probe.
package redis
