package httpserver

import (
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty addr")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *config) { c.readHeaderTimeout = positive(d, "read header timeout") }
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = positive(d, "read timeout") }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = positive(d, "write timeout") }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = positive(d, "idle timeout") }
}

// WithShutdownTimeout bounds how long in-flight requests get to finish.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = positive(d, "shutdown timeout") }
}

// WithLogger sets the server logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnShutdown registers fn to run after the listener is closed and
// in-flight requests have finished.
func WithOnShutdown(fn func()) Option {
	return func(c *config) {
		if fn != nil {
			c.onShutdown = append(c.onShutdown, fn)
		}
	}
}

func positive(d time.Duration, name string) time.Duration {
	if d <= 0 {
		panic("httpserver: " + name + " must be > 0")
	}
	return d
}
