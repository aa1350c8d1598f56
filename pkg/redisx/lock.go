package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Locker hands out short-lived cross-instance locks. A nil Locker, or one without a
// client, grants every key.
type Locker struct {
	client  *redislock.Client
	ttl     time.Duration
	busyErr error
	log     *logrus.Entry
}

// NewLocker returns a Locker whose Obtain reports busyErr when another holder has the key.
func NewLocker(client redis.UniversalClient, ttl time.Duration, busyErr error, log *logrus.Entry) *Locker {
	if busyErr == nil {
		busyErr = redislock.ErrNotObtained
	}
	l := &Locker{ttl: ttl, busyErr: busyErr, log: log}
	if client != nil {
		l.client = redislock.New(client)
	}
	return l
}

func (l *Locker) Obtain(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}

	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, l.busyErr
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// The caller's context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.WithField("key", key).Warn("failed to release redis lock: " + err.Error())
		}
	}, nil
}
