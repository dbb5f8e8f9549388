package warpcol

import (
	"github.com/warpcol/warpcol/internal/device"
	"github.com/warpcol/warpcol/mem"
	"github.com/warpcol/warpcol/resource"
)

type options struct {
	alloc   mem.Allocator
	workers int
	ctrl    *resource.Controller
	logger  *Logger
	metrics MetricsCollector
}

// Option configures a library call.
//
// Every allocation is made through the call's allocator handle; there is no
// global default memory resource.
type Option func(*options)

// WithAllocator sets the allocator supplying memory for result columns.
// If nil is passed, the aligned host allocator is used.
func WithAllocator(a mem.Allocator) Option {
	return func(o *options) {
		if a == nil {
			a = mem.HostAllocator{}
		}
		o.alloc = a
	}
}

// WithWorkers sets the number of workers executing kernel grids.
// If n <= 0, the worker count defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithResourceController gates kernel launches through ctrl's
// concurrent-launch limit. Pair it with a mem.TrackingAllocator on the same
// controller to also enforce its memory limit.
func WithResourceController(ctrl *resource.Controller) Option {
	return func(o *options) {
		o.ctrl = ctrl
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

func newOptions(optFns ...Option) options {
	o := options{
		alloc:   mem.HostAllocator{},
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

func (o *options) device() *device.Device {
	return device.New(func(do *device.Options) {
		do.Workers = o.workers
		do.Controller = o.ctrl
	})
}
