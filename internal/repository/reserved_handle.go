package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ReservedHandleRepository keeps the handles nobody may register in a Redis set.
type ReservedHandleRepository struct {
	redis redis.Cmdable
	key   string
}

func NewReservedHandleRepository(client redis.Cmdable, key string) *ReservedHandleRepository {
	return &ReservedHandleRepository{redis: client, key: key}
}

// IsReserved reports whether handle is in the set, ignoring case.
func (r *ReservedHandleRepository) IsReserved(ctx context.Context, handle string) (bool, error) {
	reserved, err := r.redis.SIsMember(ctx, r.key, strings.ToLower(handle)).Result()
	if err != nil {
		return false, fmt.Errorf("checking reserved handle: %w", err)
	}
	return reserved, nil
}

// Reserve adds handles to the set. Empty handles are skipped.
func (r *ReservedHandleRepository) Reserve(ctx context.Context, handles ...string) error {
	members := make([]any, 0, len(handles))
	for _, handle := range handles {
		handle = strings.ToLower(strings.TrimSpace(handle))
		if handle != "" {
			members = append(members, handle)
		}
	}

	if len(members) == 0 {
		return nil
	}

	if err := r.redis.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("reserving handles: %w", err)
	}
	return nil
}
