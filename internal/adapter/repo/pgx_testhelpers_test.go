package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// valuesRow scans fixed values into destination pointers. nil values leave
// the destination at its zero value.
func valuesRow(values ...any) SimpleRow {
	return NewSimpleRow(func(dest ...any) error { return assign(dest, values) })
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if target.Kind() == reflect.Pointer && v.Type() == target.Type().Elem() {
			ptr := reflect.New(v.Type())
			ptr.Elem().Set(v)
			target.Set(ptr)
			continue
		}
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

type TestRowsBase struct{}

func (TestRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (TestRowsBase) Conn() *pgx.Conn { return nil }

func (TestRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (TestRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (TestRowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	TestRowsBase
	rows   [][]any
	idx    int
	closed bool
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error { return assign(dest, r.rows[r.idx-1]) }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Close() { r.closed = true }

type call struct {
	query string
	args  []any
}

// fakeExec records every call and answers with the configured responses.
type fakeExec struct {
	calls   []call
	row     pgx.Row
	rows    [][]any
	execErr error
	lastRow *sliceRows
}

func (f *fakeExec) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("DELETE 2"), nil
}

func (f *fakeExec) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{query: query, args: args})
	if f.row == nil {
		return SimpleRow{}
	}
	return f.row
}

func (f *fakeExec) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	f.lastRow = &sliceRows{rows: f.rows}
	return f.lastRow, nil
}
