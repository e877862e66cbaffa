package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/coffeemarket/pkg/redis"
)

// Redis stores state under cm:state:<device>:<key>.
type Redis struct {
	client   *redis.Client
	deviceID string
}

func NewRedis(client *redis.Client, deviceID string) *Redis {
	return &Redis{client: client, deviceID: deviceID}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.client.StateKey(r.deviceID, key))
	if errors.Is(err, redis.ErrNil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading state %q: %w", key, err)
	}
	return v, nil
}

func (r *Redis) SetMany(ctx context.Context, values map[string]string) error {
	namespaced := make(map[string]string, len(values))
	for k, v := range values {
		namespaced[r.client.StateKey(r.deviceID, k)] = v
	}
	if err := r.client.SetMany(ctx, namespaced); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	namespaced := make([]string, 0, len(keys))
	for _, k := range keys {
		namespaced = append(namespaced, r.client.StateKey(r.deviceID, k))
	}
	if err := r.client.Del(ctx, namespaced...); err != nil {
		return fmt.Errorf("deleting state: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
