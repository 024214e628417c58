package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediaflow/pkg/utils"
)

// ErrUploadLimit is returned when a user already has the maximum number of
// content creations in flight. Transport maps it to 429.
var ErrUploadLimit = errors.New("too many concurrent uploads")

// UploadLimiter caps the number of simultaneous content creations per user
// with an atomic Redis counter. The TTL bounds slot leakage if a process
// dies between acquire and release.
//
// A nil *UploadLimiter is valid and disables the cap.
type UploadLimiter struct {
	rdb   *redis.Client
	limit int
	ttl   time.Duration
}

func NewUploadLimiter(rdb *redis.Client, limit int, ttl time.Duration) *UploadLimiter {
	if rdb == nil || limit <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UploadLimiter{rdb: rdb, limit: limit, ttl: ttl}
}

func uploadKey(userID int) string {
	return fmt.Sprintf("catalog:user:%d:uploads", userID)
}

// Acquire takes one upload slot for userID. The returned release func must
// be called exactly once; it is safe to call on the nil limiter path too.
func (l *UploadLimiter) Acquire(ctx context.Context, userID int) (release func(), err error) {
	if l == nil || userID <= 0 {
		return func() {}, nil
	}

	ok, err := utils.AcquireSlot(ctx, l.rdb, uploadKey(userID), l.limit, l.ttl)
	if err != nil {
		// Redis being down must not block uploads.
		return func() {}, nil
	}
	if !ok {
		return nil, ErrUploadLimit
	}
	return func() {
		_ = utils.ReleaseSlot(context.WithoutCancel(ctx), l.rdb, uploadKey(userID))
	}, nil
}
