package device

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Stream is an asynchronous execution queue. Launches return immediately;
// Synchronize blocks until every launched cell has finished and reports the
// first failure.
type Stream struct {
	dev  *Device
	eg   *errgroup.Group
	ctx  context.Context
	done bool
}

// NewStream creates a stream, acquiring a launch slot from the device's
// resource controller when one is configured.
func (d *Device) NewStream(ctx context.Context) (*Stream, error) {
	if err := d.ctrl.AcquireLaunch(ctx); err != nil {
		return nil, err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(d.workers)

	return &Stream{dev: d, eg: eg, ctx: ctx}, nil
}

// LaunchGrid schedules kernel over a dimX-by-dimY grid of workers. Each
// worker receives its grid coordinates and is responsible for striding across
// the full problem.
func (s *Stream) LaunchGrid(dimX, dimY int, kernel func(gx, gy int)) {
	for gy := 0; gy < dimY; gy++ {
		for gx := 0; gx < dimX; gx++ {
			gx, gy := gx, gy
			s.eg.Go(func() error {
				return s.run(func() { kernel(gx, gy) })
			})
		}
	}
}

// LaunchGroups schedules kernel for n synchronization groups.
func (s *Stream) LaunchGroups(n int, kernel func(g *Group)) {
	for i := 0; i < n; i++ {
		g := &Group{index: i}
		s.eg.Go(func() error {
			return s.run(func() { kernel(g) })
		})
	}
}

func (s *Stream) run(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("kernel panic: %v", r)
		}
	}()

	if err := s.ctx.Err(); err != nil {
		return err
	}
	f()
	return nil
}

// Synchronize blocks until all launched work has completed, releases the
// stream's launch slot, and returns the first error encountered.
func (s *Stream) Synchronize() error {
	err := s.eg.Wait()
	if !s.done {
		s.done = true
		s.dev.ctrl.ReleaseLaunch()
	}
	return err
}
