package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	ModeSingle   = "single"
	ModeCluster  = "cluster"
	ModeSentinel = "sentinel"
	ModeMemory   = "memory"
)

// clientFactories maps SERVER_MODE to a client constructor. Memory mode is
// handled by the caller, which owns the in-process server.
var clientFactories = map[string]func(RedisConfig) redis.UniversalClient{
	ModeSingle: func(c RedisConfig) redis.UniversalClient {
		return redis.NewClient(&redis.Options{
			Addr:     c.Addrs[0],
			Username: c.Username,
			Password: c.Password,
			DB:       c.DB,
		})
	},
	ModeCluster: func(c RedisConfig) redis.UniversalClient {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    c.Addrs,
			Username: c.Username,
			Password: c.Password,
		})
	},
	ModeSentinel: func(c RedisConfig) redis.UniversalClient {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    c.MasterName,
			SentinelAddrs: c.Addrs,
			Username:      c.Username,
			Password:      c.Password,
			DB:            c.DB,
		})
	},
}

// NewClient builds the client for c.Mode.
func NewClient(c RedisConfig) (redis.UniversalClient, error) {
	factory, ok := clientFactories[c.Mode]
	if !ok {
		return nil, fmt.Errorf("no redis client for SERVER_MODE %q", c.Mode)
	}
	if len(c.Addrs) == 0 {
		return nil, fmt.Errorf("REDIS_ADDRS is empty")
	}
	return factory(c), nil
}
