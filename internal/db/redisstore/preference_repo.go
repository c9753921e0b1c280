// Package redisstore keeps preference sets in Redis so several client processes on
// one machine share them.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"Apiverse/internal/core/preferences"
)

const keyPrefix = "apiverse:prefs"

// PreferenceRepo implements preferences.Store with one Redis set per scope and set name
type PreferenceRepo struct {
	client *redis.Client
}

var _ preferences.Store = (*PreferenceRepo)(nil)

// NewPreferenceRepo wraps a connected client
func NewPreferenceRepo(client *redis.Client) *PreferenceRepo {
	return &PreferenceRepo{client: client}
}

// Connect dials addr and checks the connection
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func setKey(scope preferences.Scope, set preferences.Set) string {
	return keyPrefix + ":" + scope.Key() + ":" + string(set)
}

func (r *PreferenceRepo) Has(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) (bool, error) {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return false, err
	}
	ok, err := r.client.SIsMember(ctx, setKey(scope, set), listingID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check preference: %w", err)
	}
	return ok, nil
}

func (r *PreferenceRepo) Add(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) error {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, setKey(scope, set), listingID).Err(); err != nil {
		return fmt.Errorf("failed to add preference: %w", err)
	}
	return nil
}

func (r *PreferenceRepo) Remove(ctx context.Context, scope preferences.Scope, set preferences.Set, listingID string) error {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return err
	}
	if err := r.client.SRem(ctx, setKey(scope, set), listingID).Err(); err != nil {
		return fmt.Errorf("failed to remove preference: %w", err)
	}
	return nil
}

func (r *PreferenceRepo) Members(ctx context.Context, scope preferences.Scope, set preferences.Set) ([]string, error) {
	if err := preferences.ValidateArgs(scope, set); err != nil {
		return nil, err
	}
	ids, err := r.client.SMembers(ctx, setKey(scope, set)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return ids, nil
}
