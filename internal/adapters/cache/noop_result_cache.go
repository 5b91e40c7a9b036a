package cache

import (
	"context"
	"time"
)

// NoopResultCache never stores anything. Used when Redis is not configured.
type NoopResultCache struct{}

func (NoopResultCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopResultCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
