package warpcol

import "fmt"

// Table is an ordered set of equal-length columns. The table owns its
// columns; Release returns all their buffers.
type Table struct {
	cols []*Column
	rows int
}

// NewTable builds a table from columns, which must share one length.
func NewTable(cols ...*Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	for i, c := range cols {
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %d has %d rows, expected %d", ErrInvalidArgument, i, c.Len(), rows)
		}
	}
	return &Table{cols: cols, rows: rows}, nil
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.cols) }

// NumRows returns the shared row count.
func (t *Table) NumRows() int { return t.rows }

// Column returns column i.
func (t *Table) Column(i int) *Column { return t.cols[i] }

// View returns a non-owning read view of the table.
func (t *Table) View() TableView {
	cols := make([]ColumnView, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.View()
	}
	return TableView{cols: cols, rows: t.rows}
}

// Release returns every column's buffers to their allocators.
func (t *Table) Release() {
	for _, c := range t.cols {
		c.Release()
	}
	t.cols = nil
	t.rows = 0
}

// TableView is a borrowed, read-only view of a table, valid only for as long
// as the underlying columns.
type TableView struct {
	cols []ColumnView
	rows int
}

// NewTableView assembles a view from column views, which must share one
// length.
func NewTableView(cols ...ColumnView) (TableView, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	for i, c := range cols {
		if c.Len() != rows {
			return TableView{}, fmt.Errorf("%w: column %d has %d rows, expected %d", ErrInvalidArgument, i, c.Len(), rows)
		}
	}
	return TableView{cols: cols, rows: rows}, nil
}

// NumColumns returns the column count.
func (v TableView) NumColumns() int { return len(v.cols) }

// NumRows returns the shared row count.
func (v TableView) NumRows() int { return v.rows }

// Column returns the view of column i.
func (v TableView) Column(i int) ColumnView { return v.cols[i] }
