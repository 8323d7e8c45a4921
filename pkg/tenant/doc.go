// Package tenant resolves the tenant a request belongs to and keeps it in
// request-scoped state for the lifetime of the request.
//
// # Ambient tenant
//
// Every request handled by Middleware owns one tenant slot installed in its
// context. Code anywhere below the middleware reads the current tenant with
// IDFromContext, which never fails: it reports false when the request has no
// tenant. The slot is never shared between requests, so reusing goroutines or
// running requests concurrently cannot leak a tenant from one request into
// another.
//
//	ctx, token := tenant.Set(tenant.NewScope(ctx), id)
//	defer tenant.Clear(token)
//
// # Resolution
//
// Resolver maps a host to a tenant id:
//
//  1. the port is removed and the host lower-cased;
//  2. one leading "api." or "www." is removed;
//  3. the cache is consulted under "tenant_id_<host>";
//  4. on a miss the active tenant registered for the host is loaded;
//  5. development hosts (localhost, 127.0.0.1, backend) fall back to the
//     earliest created active tenant;
//  6. hits are cached for an hour, misses as "MISSING" for five minutes.
//
// A host without a tenant is not an error for the middleware: the request
// continues with no tenant in scope. Storage failures produce a 500.
//
// # Roles
//
// When the request carries a Principal, the middleware also records the
// caller's role in the resolved tenant. Superusers are always OWNER.
// RequireRole guards routes by minimum role.
package tenant
