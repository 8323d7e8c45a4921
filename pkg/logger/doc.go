// Package logger builds *slog.Logger instances with per-environment defaults
// and context extractors.
//
// Extractors are called on every *Context logging call and let request-scoped
// values (tenant id, request id) appear on records without being passed by
// hand:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "publishd"),
//		logger.WithContextExtractors(tenant.LoggerExtractor(), logger.RequestIDExtractor()),
//	)
//	log.InfoContext(r.Context(), "article created", logger.Component("articles"))
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger
