package signature

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// OpenSQLite opens a SQLite database using the modernc.org/sqlite driver.
// Pass a file path or ":memory:".
func OpenSQLite(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// LoadSQL runs query against db and decodes every result row according to
// layout. Columns map to row fields in select order.
func LoadSQL(ctx context.Context, db *sql.DB, query string, layout Layout, args ...any) (*Store, error) {
	t, err := querySQL(ctx, db, query, args...)
	if err != nil {
		return nil, withSource(err, "sql")
	}
	s, err := build(t, layout)
	if err != nil {
		return nil, withSource(err, "sql")
	}
	return s, nil
}

func querySQL(ctx context.Context, db *sql.DB, query string, args ...any) (cellTable, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, loadErr(-1, err, "query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, loadErr(-1, err, "columns")
	}

	var t cellTable
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, loadErr(len(t), err, "scan")
		}
		cells := make([]cell, len(vals))
		for j, v := range vals {
			c, err := sqlCell(v)
			if err != nil {
				return nil, loadErr(len(t), err, "column %s", cols[j])
			}
			cells[j] = c
		}
		t = append(t, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(len(t), err, "rows")
	}
	return t, nil
}

func sqlCell(v any) (cell, error) {
	switch v := v.(type) {
	case float64:
		return numCell(v), nil
	case float32:
		return numCell(float64(v)), nil
	case int64:
		return numCell(float64(v)), nil
	case int32:
		return numCell(float64(v)), nil
	case int:
		return numCell(float64(v)), nil
	case bool:
		return textCell(strconv.FormatBool(v)), nil
	case string:
		return textCell(v), nil
	case []byte:
		return textCell(string(v)), nil
	case nil:
		return textCell(""), nil
	default:
		return cell{}, fmt.Errorf("unsupported value type %T", v)
	}
}
