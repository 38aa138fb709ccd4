package fsstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	lockKeyMaxLen = 120
	lockRetryWait = 25 * time.Millisecond
)

// BuildLockPath maps a lock key such as "statestore.learning_state" to a
// lock file under lockRoot. Keys are lowercase [a-z0-9._-] and may not start
// or end with a dot.
func BuildLockPath(lockRoot string, lockKey string) (string, error) {
	root, err := cleanPath(lockRoot)
	if err != nil {
		return "", err
	}
	key, err := validateLockKey(lockKey)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, key+".lck"), nil
}

// WithLock runs fn while holding an exclusive advisory lock on lockPath.
// Waiting for the lock honours ctx; an expired ctx yields ErrLockTimeout.
func WithLock(ctx context.Context, lockPath string, fn func() error) error {
	p, err := cleanPath(lockPath)
	if err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := EnsureDir(filepath.Dir(p), defaultDirPerm); err != nil {
		return err
	}
	return withLockFile(ctx, p, fn)
}

func validateLockKey(lockKey string) (string, error) {
	key := strings.TrimSpace(lockKey)
	switch {
	case key == "":
		return "", fmt.Errorf("%w: empty lock key", ErrInvalidPath)
	case len(key) > lockKeyMaxLen:
		return "", fmt.Errorf("%w: lock key too long", ErrInvalidPath)
	case strings.HasPrefix(key, ".") || strings.HasSuffix(key, "."):
		return "", fmt.Errorf("%w: lock key cannot start or end with dot", ErrInvalidPath)
	}
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			continue
		}
		return "", fmt.Errorf("%w: invalid lock key character %q", ErrInvalidPath, r)
	}
	return key, nil
}

// stampLockOwner records who holds the lock; it only aids debugging stuck
// locks and never affects locking.
func stampLockOwner(file *os.File) {
	if file == nil {
		return
	}
	host, _ := os.Hostname()
	line := fmt.Sprintf("pid=%d host=%s acquired=%s\n", os.Getpid(), host, time.Now().UTC().Format(time.RFC3339Nano))
	_ = file.Truncate(0)
	_, _ = file.WriteAt([]byte(line), 0)
}

func waitForLockRetry(ctx context.Context, lockPath string) error {
	timer := time.NewTimer(lockRetryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %v", ErrLockTimeout, lockPath, ctx.Err())
	case <-timer.C:
		return nil
	}
}
