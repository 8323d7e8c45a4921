// Package cache provides the key-value cache contract used by tenant
// resolution and module gating, together with two implementations.
//
// MemoryStore keeps entries in process, bounded by capacity with
// least-recently-used eviction and a per-entry TTL. RedisStore keeps them in
// Redis, relying on server-side expiry so that several API replicas share one
// view of the cache.
//
// # Usage
//
//	store := cache.NewMemoryStore(cache.WithCapacity(10_000))
//
//	if err := store.Set(ctx, "tenant_id_a.example", id.String(), time.Hour); err != nil {
//		// handle error
//	}
//
//	value, ok, err := store.Get(ctx, "tenant_id_a.example")
//
// A missing or expired key is reported as ok == false with a nil error.
// Errors are reserved for backend failures (network, closed client).
package cache
