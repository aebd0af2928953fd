// Package providers constructs external clients shared across the service.
package providers

import "github.com/go-redis/redis/v8"

// NewRedisProvider builds the shared redis client. Pooling defaults are left
// to the driver; the same client backs both storage and the metrics collector.
func NewRedisProvider(addr, password string) *redis.Client {
	return NewRedisProviderDB(addr, password, 0)
}

// NewRedisProviderDB selects a specific logical database.
func NewRedisProviderDB(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
