package cache

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorConnection
	ErrorTimeout
)

type CacheError struct {
	Code      ErrorCode
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s (code %d): %v", e.Operation, e.Key, e.Code, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// wrapError 將 redis 錯誤分類，redis.Nil 轉成 ErrCacheMiss
func wrapError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	code := ErrorUnknown
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrorTimeout
	case errors.As(err, &netErr):
		code = ErrorConnection
		if netErr.Timeout() {
			code = ErrorTimeout
		}
	}
	return &CacheError{Code: code, Operation: op, Key: key, Err: err}
}
