// Package content holds the publishing entities (articles, categories, tags,
// comments, reactions, views and notifications) and their tenant-scoped
// storage.
//
// Every entity carries a nullable tenant reference. Reads made by Service use
// the default scope of the request context, so a handler running for tenant A
// never sees rows of tenant B. Writes are tagged with scoped.TenantRef(ctx).
package content
