package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Address  string
	Password string
	DB       int
	// Attempts bounds the connection retries; zero means a single try.
	Attempts int
}

// Connect dials redis and pings it, backing off between attempts.
func Connect(ctx context.Context, opts Options, log *logrus.Entry) (*redis.Client, error) {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
			PoolSize: 20,
		})
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			log.WithFields(logrus.Fields{"attempt": attempt, "addr": opts.Address}).Info("connected to redis")
			return client, nil
		}
		_ = client.Close()

		if attempt == attempts {
			break
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		log.WithFields(logrus.Fields{"attempt": attempt, "addr": opts.Address, "retry_in": sleep.String()}).
			Warn("failed to connect redis: " + lastErr.Error())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("connect redis %s: %w", opts.Address, lastErr)
}
