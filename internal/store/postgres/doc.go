// Package postgres implements the tenant, membership and module stores on
// database/sql with the pgx stdlib driver.
package postgres
