package cache

import "errors"

var (
	ErrCacheMiss        = errors.New("cache: miss")
	ErrCacheUnavailable = errors.New("cache: redis unavailable")
	ErrInvalidValue     = errors.New("cache: stored value does not decode")
)
