package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CatalogBase    string
	CatalogKey     string
	CatalogRPS     int
	SubqueryTO     time.Duration
	CacheTTL       time.Duration
	WarmWorkers    int
	WarmProperties []int64
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/staybook?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CatalogBase:    env("CATALOG_BASE_URL", "https://catalog.staybook.internal/v1"),
		CatalogKey:     env("CATALOG_API_KEY", ""),
		CatalogRPS:     atoi("CATALOG_RPS", 10),
		SubqueryTO:     time.Duration(atoi("SUBQUERY_TIMEOUT_MS", 5000)) * time.Millisecond,
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		WarmWorkers:    atoi("WARM_WORKERS", 4),
		WarmProperties: int64List("WARM_PROPERTY_IDS"),
	}
	if c.CatalogKey == "" {
		log.Warn().Msg("CATALOG_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// int64List parses a comma-separated id list; malformed entries are skipped.
func int64List(k string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(k), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}
