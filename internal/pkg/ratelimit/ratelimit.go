package ratelimit

import (
	"context"
	"time"
)

type ILimiter interface {
	Allow(ctx context.Context, key string) bool
}

type Config struct {
	Capacity   int
	RatePS     float64       // tokens/秒
	RefillRate time.Duration // 補充時間間隔
}

func DefaultConfig() Config {
	return Config{
		Capacity:   100,
		RatePS:     10,
		RefillRate: time.Second,
	}
}

func (c Config) orDefault() Config {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = d.RatePS
	}
	if c.RefillRate <= 0 {
		c.RefillRate = d.RefillRate
	}
	return c
}
