package app

import (
	"time"

	"github.com/dmitrymomot/publishkit/pkg/config"
	"github.com/dmitrymomot/publishkit/pkg/httpserver"
	"github.com/dmitrymomot/publishkit/pkg/pg"
	"github.com/dmitrymomot/publishkit/pkg/redis"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"production"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"publishkit"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	CacheBackend       string   `env:"CACHE_BACKEND" envDefault:"redis"`
	CacheCapacity      int      `env:"CACHE_MEMORY_CAPACITY" envDefault:"10000"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	TrustAuthHeaders   bool     `env:"AUTH_TRUST_HEADERS" envDefault:"false"`
	MigrateOnStart     bool     `env:"MIGRATE_ON_START" envDefault:"false"`

	Tenant TenantConfig
	Module ModuleConfig

	HTTP  httpserver.Config
	PG    pg.Config
	Redis redis.Config
}

type TenantConfig struct {
	CacheTTL         time.Duration `env:"TENANT_CACHE_TTL" envDefault:"1h"`
	NegativeCacheTTL time.Duration `env:"TENANT_NEGATIVE_CACHE_TTL" envDefault:"5m"`
	DevHosts         []string      `env:"TENANT_DEV_HOSTS" envSeparator:"," envDefault:"localhost,127.0.0.1,backend"`
	HostPrefixes     []string      `env:"TENANT_HOST_PREFIXES" envSeparator:"," envDefault:"api.,www."`
}

type ModuleConfig struct {
	CacheTTL   time.Duration `env:"MODULE_CACHE_TTL" envDefault:"5m"`
	PathPrefix string        `env:"MODULE_PATH_PREFIX" envDefault:"/api/v1/"`
	Exempt     []string      `env:"MODULE_EXEMPT" envSeparator:"," envDefault:"auth,entities,accounts,modules"`
}

// LoadConfig reads Config from the environment.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
