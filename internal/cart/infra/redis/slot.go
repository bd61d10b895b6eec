// Package redis implements the cart slot on a Redis string key.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type Slot struct {
	client *redis.Client
}

func New(client *redis.Client) *Slot {
	return &Slot{client: client}
}

func (s *Slot) Read(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *Slot) Write(ctx context.Context, key string, value []byte) error {
	// Carts persist until cleared; no TTL.
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping verifies the connection at startup.
func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
