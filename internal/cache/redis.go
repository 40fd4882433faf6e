package cache

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultAddr = "localhost:6379"

// Client is the shared connection set by InitRedis.
var Client *redis.Client

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// Options accepts either host:port or a redis:// / rediss:// URL.
func Options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = defaultAddr
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects Client and verifies it with a ping.
func InitRedis(ctx context.Context, addr string) error {
	opts, err := Options(addr)
	if err != nil {
		return err
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	Client = client
	log.Println("Connected to Redis")
	return nil
}

// Close releases Client if it was opened.
func Close() {
	if Client == nil {
		return
	}
	if err := Client.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}
	Client = nil
}
