package cache

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	_instances = sync.Map{}
)

// GetRedisClient 同一個位址只建立一個 client
func GetRedisClient(address string, options ...Option) *redis.Client {
	if client, ok := _instances.Load(address); ok {
		return client.(*redis.Client)
	}

	opts := &redis.Options{
		Addr: address,
	}
	for _, option := range options {
		option(opts)
	}

	candidate := redis.NewClient(opts)
	client, loaded := _instances.LoadOrStore(address, candidate)
	if loaded {
		// 併發建立時只留下先存入的那個
		_ = candidate.Close()
	}
	return client.(*redis.Client)
}

// CloseRedisClient closes and forgets the client registered for address.
func CloseRedisClient(address string) error {
	client, ok := _instances.LoadAndDelete(address)
	if !ok {
		return nil
	}
	return client.(*redis.Client).Close()
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		o.PoolSize = poolSize
	}
}
