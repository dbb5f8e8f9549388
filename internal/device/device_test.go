package device

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/warpcol/warpcol/resource"
)

func TestGridDims(t *testing.T) {
	cases := []struct {
		nx, ny         int
		wantX, wantY   int
	}{
		{1, 1, 1, 1},
		{3, 2, 3, 2},
		{1000, 1000, MaxGridDimX, MaxGridDimY},
		{MaxGridDimX, MaxGridDimY, MaxGridDimX, MaxGridDimY},
	}
	for _, c := range cases {
		x, y := GridDims(c.nx, c.ny)
		if x != c.wantX || y != c.wantY {
			t.Errorf("GridDims(%d, %d) = (%d, %d), want (%d, %d)", c.nx, c.ny, x, y, c.wantX, c.wantY)
		}
	}
}

func TestGroupCount(t *testing.T) {
	if got := GroupCount(5); got != 5 {
		t.Errorf("GroupCount(5) = %d", got)
	}
	if got := GroupCount(100000); got != MaxGridDimX {
		t.Errorf("GroupCount(100000) = %d, want %d", got, MaxGridDimX)
	}
}

func TestBallot(t *testing.T) {
	g := &Group{}

	if w := g.Ballot(func(int) bool { return true }); w != ^uint32(0) {
		t.Errorf("all-true ballot = %#x", w)
	}
	if w := g.Ballot(func(int) bool { return false }); w != 0 {
		t.Errorf("all-false ballot = %#x", w)
	}
	if w := g.Ballot(func(lane int) bool { return lane == 0 || lane == 31 }); w != 1|1<<31 {
		t.Errorf("edge-lane ballot = %#x", w)
	}
	if w := g.Ballot(func(lane int) bool { return lane%2 == 0 }); w != 0x55555555 {
		t.Errorf("even-lane ballot = %#x", w)
	}
}

func TestLaunchGridCoversStridedRange(t *testing.T) {
	d := New(func(o *Options) { o.Workers = 4 })

	const nx, ny = 700, 130 // exceeds both grid caps
	hits := make([]atomic.Int32, nx*ny)

	s, err := d.NewStream(context.Background())
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	dimX, dimY := GridDims(nx, ny)
	s.LaunchGrid(dimX, dimY, func(gx, gy int) {
		for i := gx; i < nx; i += dimX {
			for j := gy; j < ny; j += dimY {
				hits[j*nx+i].Add(1)
			}
		}
	})
	if err := s.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	for k := range hits {
		if hits[k].Load() != 1 {
			t.Fatalf("cell %d visited %d times", k, hits[k].Load())
		}
	}
}

func TestLaunchGroups(t *testing.T) {
	d := New()

	const rows = 97
	groups := GroupCount(rows)
	var total atomic.Int64

	s, err := d.NewStream(context.Background())
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	s.LaunchGroups(groups, func(g *Group) {
		for j := g.Index(); j < rows; j += groups {
			total.Add(int64(j))
		}
	})
	if err := s.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	if want := int64(rows * (rows - 1) / 2); total.Load() != want {
		t.Errorf("total = %d, want %d", total.Load(), want)
	}
}

func TestKernelPanicBecomesError(t *testing.T) {
	d := New()

	s, err := d.NewStream(context.Background())
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	s.LaunchGrid(1, 1, func(int, int) {
		panic("boom")
	})
	if err := s.Synchronize(); err == nil {
		t.Fatal("expected error from panicking kernel")
	}
}

func TestStreamReleasesLaunchSlot(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MaxConcurrentLaunches: 1})
	d := New(func(o *Options) { o.Controller = ctrl })

	s, err := d.NewStream(context.Background())
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if ctrl.TryAcquireLaunch() {
		t.Fatal("launch slot should be held by the stream")
	}
	if err := s.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
	if !ctrl.TryAcquireLaunch() {
		t.Fatal("launch slot should be free after Synchronize")
	}
	ctrl.ReleaseLaunch()
}
