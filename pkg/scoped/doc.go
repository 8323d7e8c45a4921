// Package scoped provides tenant-scoped data access.
//
// The default read path of a Store (Query, Get, Delete) is restricted to the
// tenant in scope of the context: rows tagged with another tenant, and rows
// with no tenant, are invisible. Without a tenant in scope the same calls are
// unrestricted, which is what administrative and tenant-independent code sees.
//
// QueryAll is the explicit bypass. It has its own name so that every
// unscoped read is visible at the call site.
//
// Writes are explicit: Insert stores the tenant reference the caller put on
// the row and never fills it from the context. Request handlers tag new rows
// with TenantRef(ctx); background jobs set it from their own data.
//
// A Table whose TenantColumn is empty is outside the scoping mechanism and
// every read behaves like QueryAll.
package scoped
