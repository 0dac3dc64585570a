package users

import (
	"context"
	"time"
)

// CachedPage holds one filtered page before actor annotation. can_edit is
// actor-specific and is never cached.
type CachedPage struct {
	Users  []*User          `json:"users"`
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

type Cache interface {
	GetPage(ctx context.Context, key string) (*CachedPage, bool, error)
	SetPage(ctx context.Context, key string, page *CachedPage, ttl time.Duration) error
}
