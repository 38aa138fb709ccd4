// Package statestore persists coffeechatted state as small JSON blobs under
// string keys. Two backends exist: one file per key, or a sqlite app_state
// table.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("statestore: not found")
	ErrInvalidKey = errors.New("statestore: invalid key")
)

const (
	KeyLearningState = "learning_state"
	KeyUserFocus     = "user_focus"
	KeyUserThreads   = "user_threads"
)

// UpdateFunc receives the current value (nil when absent) and returns the
// value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update runs fn while holding the key exclusively.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

const keyMaxLen = 64

func validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if len(key) > keyMaxLen {
		return "", fmt.Errorf("%w: key too long", ErrInvalidKey)
	}
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			continue
		}
		return "", fmt.Errorf("%w: invalid key character %q", ErrInvalidKey, r)
	}
	return key, nil
}
