package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

// redisCollector exports storage-level gauges scraped live from redis:
// backend reachability and the number of registered users.
type redisCollector struct {
	rdb    *redis.Client
	logger *slog.Logger

	upDesc    *prometheus.Desc
	usersDesc *prometheus.Desc
}

func newRedisCollector(rdb *redis.Client, logger *slog.Logger) *redisCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisCollector{
		rdb:    rdb,
		logger: logger,
		upDesc: prometheus.NewDesc(
			"el_storage_up",
			"Whether the redis storage backend is reachable (1) or not (0).",
			nil,
			nil,
		),
		usersDesc: prometheus.NewDesc(
			"el_users_registered",
			"Current number of registered users.",
			nil,
			nil,
		),
	}
}

func (c *redisCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.upDesc
	ch <- c.usersDesc
}

func (c *redisCollector) Collect(ch chan<- prometheus.Metric) {
	if c.rdb == nil {
		return
	}

	// Keep redis reads bounded so scrapes do not hang.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	up := 1.0
	users, err := c.rdb.HLen(ctx, "el:users").Result()
	if err != nil {
		up = 0
		c.logger.Warn("redis collector scrape failed", "err", err)
	}

	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, up)
	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.usersDesc, prometheus.GaugeValue, float64(users))
	}
}

var registerCollectorOnce sync.Once

// RegisterRedisCollector registers the storage gauges. Safe to call more
// than once; only the first registration wins.
func RegisterRedisCollector(rdb *redis.Client, logger *slog.Logger) {
	registerCollectorOnce.Do(func() {
		prometheus.MustRegister(newRedisCollector(rdb, logger))
	})
}
