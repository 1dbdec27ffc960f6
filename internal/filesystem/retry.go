package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"image-catalog/internal/logging"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// NewMediaFS returns a retrying filesystem bound to dir. Paths handed to it
// are relative to dir and cannot escape it, symlinks included.
func NewMediaFS(dir string, config RetryConfig) billy.Filesystem {
	return WithRetry(osfs.New(dir, osfs.WithBoundOS()), "media", config)
}

// RetryFS decorates a billy.Filesystem with ESTALE retries on the read and
// remove paths. Operations it does not override pass straight through.
type RetryFS struct {
	billy.Filesystem
	volume string
	config RetryConfig
}

// WithRetry wraps fs. volume labels the metrics recorded for it.
func WithRetry(fs billy.Filesystem, volume string, config RetryConfig) *RetryFS {
	return &RetryFS{Filesystem: fs, volume: volume, config: config}
}

// Stat performs Stat with retry logic for NFS stale file handle errors
func (r *RetryFS) Stat(filename string) (os.FileInfo, error) {
	return withRetry(r, "stat", filename, func() (os.FileInfo, error) {
		return r.Filesystem.Stat(filename)
	})
}

// Open performs Open with retry logic for NFS stale file handle errors
func (r *RetryFS) Open(filename string) (billy.File, error) {
	return withRetry(r, "open", filename, func() (billy.File, error) {
		return r.Filesystem.Open(filename)
	})
}

// ReadDir performs ReadDir with retry logic for NFS stale file handle errors
func (r *RetryFS) ReadDir(path string) ([]os.FileInfo, error) {
	return withRetry(r, "readdir", path, func() ([]os.FileInfo, error) {
		return r.Filesystem.ReadDir(path)
	})
}

// Remove performs Remove with retry logic for NFS stale file handle errors
func (r *RetryFS) Remove(filename string) error {
	_, err := withRetry(r, "remove", filename, func() (struct{}, error) {
		return struct{}{}, r.Filesystem.Remove(filename)
	})
	return err
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

func withRetry[T any](r *RetryFS, op, path string, fn func() (T, error)) (T, error) {
	obs := observe()
	start := time.Now()
	backoff := r.config.InitialBackoff

	var result T
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				obs.ObserveRetrySuccess(op, r.volume)
			}
			obs.ObserveOperation(r.volume, op, time.Since(start).Seconds(), nil)
			return result, nil
		}

		// Only retry on NFS stale file handle errors
		if !isNFSStaleError(lastErr) {
			obs.ObserveOperation(r.volume, op, time.Since(start).Seconds(), lastErr)
			return result, lastErr
		}

		obs.ObserveStaleError(op, r.volume)

		// Don't sleep after the last attempt
		if attempt < r.config.MaxRetries {
			obs.ObserveRetryAttempt(op, r.volume)
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, r.config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > r.config.MaxBackoff {
				backoff = r.config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, r.config.MaxRetries, path, lastErr)
	obs.ObserveRetryFailure(op, r.volume)
	obs.ObserveOperation(r.volume, op, time.Since(start).Seconds(), lastErr)
	return result, lastErr
}
