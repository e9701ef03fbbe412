package db

import (
	"context"
	"time"

	"github.com/geocoder89/expensehub/internal/cache"
	"github.com/geocoder89/expensehub/internal/domain/user"
	"github.com/geocoder89/expensehub/internal/service"
)

const (
	userCacheTTL = 5 * time.Minute
	userCacheMax = 10_000
)

// cachedUsers memoizes GetByID. Users are never updated or deleted, so an
// entry can only go stale by expiring.
type cachedUsers struct {
	service.UserStore
	byID *cache.TTL[string, user.User]
}

func newCachedUsers(next service.UserStore) *cachedUsers {
	return &cachedUsers{
		UserStore: next,
		byID:      cache.New[string, user.User](userCacheTTL, userCacheMax),
	}
}

func (s *cachedUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if u, ok := s.byID.Get(id); ok {
		return u, nil
	}

	u, err := s.UserStore.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	s.byID.Set(id, u)
	return u, nil
}
