// Package module gates API requests by feature module.
//
// A module is named by the path segment following the API prefix, so a
// request to /api/v1/articles/posts/ belongs to the "articles" module.
// Whether it is enabled for the tenant in scope is decided as follows:
//
//   - an unknown module is enabled;
//   - a system module follows its global flag only;
//   - otherwise a tenant override, when present, wins over the global flag.
//
// Decisions are cached for five minutes under
// "module_active_<tenant>_<slug>" or "module_active_global_<slug>" when the
// request has no tenant. A disabled module is refused with 403 and the body
//
//	{"code":"module_disabled","message":"The module <slug> is currently disabled for this tenant.","details":{}}
//
// The segments auth, entities and accounts are never gated.
package module
