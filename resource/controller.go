// Package resource provides global resource accounting for column buffers and
// kernel launches.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for column buffer memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentLaunches is the maximum number of kernel streams that may
	// be in flight at once. If 0, defaults to 1.
	MaxConcurrentLaunches int64
}

// Controller manages global resources (memory, launch concurrency).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Launch concurrency
	launchSem *semaphore.Weighted
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentLaunches <= 0 {
		cfg.MaxConcurrentLaunches = 1
	}

	c := &Controller{
		cfg:       cfg,
		launchSem: semaphore.NewWeighted(cfg.MaxConcurrentLaunches),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireLaunch reserves a kernel launch slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireLaunch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.launchSem.Acquire(ctx, 1)
}

// TryAcquireLaunch attempts to reserve a launch slot without blocking.
func (c *Controller) TryAcquireLaunch() bool {
	if c == nil {
		return true
	}
	return c.launchSem.TryAcquire(1)
}

// ReleaseLaunch releases a kernel launch slot.
func (c *Controller) ReleaseLaunch() {
	if c == nil {
		return
	}
	c.launchSem.Release(1)
}
