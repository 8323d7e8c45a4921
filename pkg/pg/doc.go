// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool and retries until the server answers a ping.
// OpenDB exposes the same pool as a *sql.DB for code written against
// database/sql, such as the tenant-scoped repositories and goose.
//
// Migrate and Rollback run goose migrations from an fs.FS, normally the
// embedded db package:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sqlDB := pg.OpenDB(pool)
//	if err := pg.Migrate(ctx, sqlDB, db.Migrations, db.MigrationsDir, cfg, log); err != nil {
//		return err
//	}
//
// Healthcheck adapts a pool into a readiness probe, and the Is* helpers
// classify driver errors by SQLSTATE.
package pg
