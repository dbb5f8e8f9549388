package warpcol

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpcol/warpcol/mem"
	"github.com/warpcol/warpcol/resource"
)

func TestTranspose_Example(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	a, err := NewColumn(ctx, alloc, []int32{1, 2, 3}, nil)
	require.NoError(t, err)
	b, err := NewColumn(ctx, alloc, []int32{4, 5, 6}, nil)
	require.NoError(t, err)
	in, err := NewTable(a, b)
	require.NoError(t, err)
	defer in.Release()

	out, err := Transpose(ctx, in.View())
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, 3, out.NumColumns())
	require.Equal(t, 2, out.NumRows())

	want := [][]int32{{1, 4}, {2, 5}, {3, 6}}
	for j := range want {
		col := out.Column(j)
		assert.False(t, col.HasMask(), "column %d should carry no mask", j)
		assert.Equal(t, 0, col.NullCount())
		assert.Equal(t, want[j], Values[int32](col.View()))
	}
}

func TestTranspose_WithNulls(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	// Input column 0 has row 1 null.
	a, err := NewColumn(ctx, alloc, []int32{1, 2, 3}, []bool{true, false, true})
	require.NoError(t, err)
	b, err := NewColumn(ctx, alloc, []int32{4, 5, 6}, nil)
	require.NoError(t, err)
	in, err := NewTable(a, b)
	require.NoError(t, err)
	defer in.Release()

	out, err := Transpose(ctx, in.View())
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, 3, out.NumColumns())
	require.Equal(t, 2, out.NumRows())

	// Every output column gets a mask, even those with zero nulls.
	for j := 0; j < out.NumColumns(); j++ {
		assert.True(t, out.Column(j).HasMask(), "column %d should carry a mask", j)
	}

	// Output column 1 (input row 1) is null at position 0 (input column 0).
	assert.Equal(t, 1, out.Column(1).NullCount())
	assert.False(t, out.Column(1).Valid(0))
	assert.True(t, out.Column(1).Valid(1))

	assert.Equal(t, 0, out.Column(0).NullCount())
	assert.Equal(t, 0, out.Column(2).NullCount())

	// Payload bytes under the null position are still transposed verbatim.
	assert.Equal(t, []int32{2, 5}, Values[int32](out.Column(1).View()))
}

func TestTranspose_Empty(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	// Zero columns.
	in, err := NewTable()
	require.NoError(t, err)
	out, err := Transpose(ctx, in.View())
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumColumns())
	assert.Equal(t, 0, out.NumRows())

	// Zero rows.
	a, err := NewColumn(ctx, alloc, []int64{}, nil)
	require.NoError(t, err)
	in2, err := NewTable(a)
	require.NoError(t, err)
	defer in2.Release()

	out2, err := Transpose(ctx, in2.View())
	require.NoError(t, err)
	assert.Equal(t, 0, out2.NumColumns())
	assert.Equal(t, 0, out2.NumRows())
}

func TestTranspose_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	a, err := NewColumn(ctx, alloc, []int32{1, 2}, nil)
	require.NoError(t, err)
	b, err := NewColumn(ctx, alloc, []float64{1, 2}, nil)
	require.NoError(t, err)
	in, err := NewTable(a, b)
	require.NoError(t, err)
	defer in.Release()

	_, err = Transpose(ctx, in.View())
	var mismatch *ErrTypeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1, mismatch.Column)
	assert.Equal(t, Int32, mismatch.Expected)
	assert.Equal(t, Float64, mismatch.Actual)
}

func TestTranspose_UnsupportedType(t *testing.T) {
	ctx := context.Background()

	str := &Column{dtype: String, length: 2}
	in, err := NewTable(str, str)
	require.NoError(t, err)

	_, err = Transpose(ctx, in.View())
	var unsupported *ErrUnsupportedType
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, String, unsupported.DType)
}

func TestTranspose_MaskOnlyNoNulls(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	// A mask with zero nulls does not trigger output masks.
	a, err := NewColumn(ctx, alloc, []uint16{7, 8}, []bool{true, true})
	require.NoError(t, err)
	in, err := NewTable(a)
	require.NoError(t, err)
	defer in.Release()

	out, err := Transpose(ctx, in.View())
	require.NoError(t, err)
	defer out.Release()

	for j := 0; j < out.NumColumns(); j++ {
		assert.False(t, out.Column(j).HasMask())
	}
}

// buildRandomTable creates ncols int64 columns of nrows elements with a
// deterministic value/validity pattern.
func buildRandomTable(t *testing.T, ctx context.Context, alloc mem.Allocator, ncols, nrows int, nullRate float64, seed int64) *Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	cols := make([]*Column, ncols)
	for i := range cols {
		values := make([]int64, nrows)
		var valids []bool
		if nullRate > 0 {
			valids = make([]bool, nrows)
		}
		for j := range values {
			values[j] = rng.Int63()
			if valids != nil {
				valids[j] = rng.Float64() >= nullRate
			}
		}
		col, err := NewColumn(ctx, alloc, values, valids)
		require.NoError(t, err)
		cols[i] = col
	}
	table, err := NewTable(cols...)
	require.NoError(t, err)
	return table
}

func totalNulls(v TableView) int {
	total := 0
	for i := 0; i < v.NumColumns(); i++ {
		total += v.Column(i).NullCount()
	}
	return total
}

func TestTranspose_ElementCorrespondenceStrided(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	// Exceeds both grid axis caps and the group count, forcing multiple
	// strided passes in every kernel.
	const ncols, nrows = 300, 70
	in := buildRandomTable(t, ctx, alloc, ncols, nrows, 0.13, 7)
	defer in.Release()

	out, err := Transpose(ctx, in.View(), WithWorkers(8))
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, nrows, out.NumColumns())
	require.Equal(t, ncols, out.NumRows())

	inView, outView := in.View(), out.View()
	for i := 0; i < ncols; i++ {
		src := Values[int64](inView.Column(i))
		for j := 0; j < nrows; j++ {
			if got := Values[int64](outView.Column(j))[i]; got != src[j] {
				t.Fatalf("out[%d][%d] = %d, want %d", j, i, got, src[j])
			}
			if outView.Column(j).Valid(i) != inView.Column(i).Valid(j) {
				t.Fatalf("validity mismatch at (%d, %d)", i, j)
			}
		}
	}

	// Null conservation: per-column counts sum to the input total.
	assert.Equal(t, totalNulls(inView), totalNulls(outView))
}

func TestTranspose_RoundTrip(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	in := buildRandomTable(t, ctx, alloc, 17, 29, 0.2, 11)
	defer in.Release()

	once, err := Transpose(ctx, in.View())
	require.NoError(t, err)
	defer once.Release()

	twice, err := Transpose(ctx, once.View())
	require.NoError(t, err)
	defer twice.Release()

	require.Equal(t, in.NumColumns(), twice.NumColumns())
	require.Equal(t, in.NumRows(), twice.NumRows())

	inView, backView := in.View(), twice.View()
	for i := 0; i < in.NumColumns(); i++ {
		assert.Equal(t, Values[int64](inView.Column(i)), Values[int64](backView.Column(i)))
		require.Equal(t, inView.Column(i).NullCount(), backView.Column(i).NullCount())
		for j := 0; j < in.NumRows(); j++ {
			require.Equal(t, inView.Column(i).Valid(j), backView.Column(i).Valid(j))
		}
	}
}

func TestTranspose_TrackingAllocator(t *testing.T) {
	ctx := context.Background()
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxConcurrentLaunches: 2})
	alloc := mem.TrackingAllocator{Inner: mem.HostAllocator{}, Ctrl: ctrl}

	a, err := NewColumn(ctx, alloc, []float32{1.5, 2.5}, []bool{true, false})
	require.NoError(t, err)
	in, err := NewTable(a)
	require.NoError(t, err)

	out, err := Transpose(ctx, in.View(),
		WithAllocator(alloc),
		WithResourceController(ctrl),
	)
	require.NoError(t, err)
	assert.Greater(t, ctrl.MemoryUsage(), int64(0))

	out.Release()
	in.Release()
	assert.Equal(t, int64(0), ctrl.MemoryUsage())
}

func TestTranspose_Metrics(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	var metrics BasicMetricsCollector

	a, err := NewColumn(ctx, alloc, []uint8{1, 2}, nil)
	require.NoError(t, err)
	in, err := NewTable(a)
	require.NoError(t, err)
	defer in.Release()

	out, err := Transpose(ctx, in.View(), WithMetrics(&metrics))
	require.NoError(t, err)
	out.Release()

	assert.Equal(t, int64(1), metrics.TransposeCount.Load())
	assert.Equal(t, int64(0), metrics.TransposeErrors.Load())
}

func TestTranspose_AllDTypes(t *testing.T) {
	ctx := context.Background()
	alloc := mem.HostAllocator{}

	check := func(t *testing.T, in *Table, wantDT DType) {
		t.Helper()
		out, err := Transpose(ctx, in.View())
		require.NoError(t, err)
		defer out.Release()
		require.Equal(t, in.NumRows(), out.NumColumns())
		for j := 0; j < out.NumColumns(); j++ {
			assert.Equal(t, wantDT, out.Column(j).DType())
		}
	}

	valids := []bool{true, false, true}

	boolCol, err := NewColumn(ctx, alloc, []bool{true, false, true}, valids)
	require.NoError(t, err)
	tb, err := NewTable(boolCol)
	require.NoError(t, err)
	defer tb.Release()
	check(t, tb, Bool)

	f64Col, err := NewColumn(ctx, alloc, []float64{1, 2, 3}, valids)
	require.NoError(t, err)
	tf, err := NewTable(f64Col)
	require.NoError(t, err)
	defer tf.Release()
	check(t, tf, Float64)

	u32Col, err := NewColumn(ctx, alloc, []uint32{1, 2, 3}, nil)
	require.NoError(t, err)
	tu, err := NewTable(u32Col)
	require.NoError(t, err)
	defer tu.Release()
	check(t, tu, Uint32)
}
