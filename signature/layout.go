package signature

import (
	"strconv"
	"strings"
)

// Layout describes where the vector and the optional label/path fields sit
// inside each persisted row.
//
// Column indexes may be negative, counting from the end of the row (-1 is
// the last column). Columns not covered by the vector, label or path are
// ignored.
type Layout struct {
	// Dim is the vector length. 0 infers it from the first row: every column
	// from VectorOffset onward that is not the label or path column.
	Dim int `yaml:"dim" json:"dim"`
	// VectorOffset is the column the vector starts at.
	VectorOffset int `yaml:"vector_offset" json:"vector_offset"`
	// LabelColumn locates the label field. nil means rows carry no label.
	LabelColumn *int `yaml:"label_column,omitempty" json:"label_column,omitempty"`
	// PathColumn locates the image path field. nil means rows carry no path.
	PathColumn *int `yaml:"path_column,omitempty" json:"path_column,omitempty"`
}

// Column returns a pointer to i for use in Layout literals.
func Column(i int) *int { return &i }

// VectorOnly is the layout of plain signature arrays: every column is a
// vector component. Records are identified by ordinal only.
func VectorOnly(dim int) Layout {
	return Layout{Dim: dim}
}

// VectorLabelPath is the layout of tuple stores: the vector followed by a
// label and then the image path as the last two fields.
func VectorLabelPath(dim int) Layout {
	return Layout{Dim: dim, LabelColumn: Column(-2), PathColumn: Column(-1)}
}

// columns is a Layout resolved against a concrete row width.
type columns struct {
	width  int
	offset int
	dim    int
	label  int // -1 when absent
	path   int // -1 when absent
}

func (l Layout) resolve(width int) (columns, error) {
	c := columns{width: width, offset: l.VectorOffset, label: -1, path: -1}

	if l.Dim < 0 {
		return c, loadErr(-1, nil, "negative dimension %d", l.Dim)
	}
	if l.VectorOffset < 0 {
		return c, loadErr(-1, nil, "negative vector offset %d", l.VectorOffset)
	}

	var err error
	if l.LabelColumn != nil {
		if c.label, err = absColumn(*l.LabelColumn, width, "label"); err != nil {
			return c, err
		}
	}
	if l.PathColumn != nil {
		if c.path, err = absColumn(*l.PathColumn, width, "path"); err != nil {
			return c, err
		}
	}
	if c.label >= 0 && c.label == c.path {
		return c, loadErr(-1, nil, "label and path share column %d", c.label)
	}

	c.dim = l.Dim
	if c.dim == 0 {
		c.dim = width - c.offset
		if c.label >= c.offset {
			c.dim--
		}
		if c.path >= c.offset {
			c.dim--
		}
	}
	if c.dim <= 0 {
		return c, loadErr(-1, nil, "row width %d leaves no room for a vector", width)
	}
	if c.offset+c.dim > width {
		return c, loadErr(-1, nil, "vector [%d,%d) exceeds row width %d", c.offset, c.offset+c.dim, width)
	}
	if c.inVector(c.label) {
		return c, loadErr(-1, nil, "label column %d overlaps vector [%d,%d)", c.label, c.offset, c.offset+c.dim)
	}
	if c.inVector(c.path) {
		return c, loadErr(-1, nil, "path column %d overlaps vector [%d,%d)", c.path, c.offset, c.offset+c.dim)
	}
	return c, nil
}

func (c columns) inVector(col int) bool {
	return col >= c.offset && col < c.offset+c.dim
}

func absColumn(col, width int, what string) (int, error) {
	abs := col
	if col < 0 {
		abs = width + col
	}
	if abs < 0 || abs >= width {
		return -1, loadErr(-1, nil, "%s column %d outside row width %d", what, col, width)
	}
	return abs, nil
}

// cell is one decoded field of a persisted row.
type cell struct {
	num   float64
	text  string
	isNum bool
}

func numCell(v float64) cell { return cell{num: v, isNum: true} }
func textCell(s string) cell { return cell{text: s} }

func (c cell) format() string {
	if c.isNum {
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	}
	return c.text
}

func (c cell) float() (float64, bool) {
	if c.isNum {
		return c.num, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
	return v, err == nil
}

// table is the decoder-independent view of a persisted signature array.
type table interface {
	Rows() int
	Width(row int) int
	Cell(row, col int) cell
}

// cellTable is a table of heterogeneous rows (JSON, CSV, SQL).
type cellTable [][]cell

func (t cellTable) Rows() int              { return len(t) }
func (t cellTable) Width(row int) int      { return len(t[row]) }
func (t cellTable) Cell(row, col int) cell { return t[row][col] }

// matrixTable is a dense numeric table (NPY).
type matrixTable struct {
	rows, cols int
	at         func(row, col int) float64
}

func (t matrixTable) Rows() int              { return t.rows }
func (t matrixTable) Width(int) int          { return t.cols }
func (t matrixTable) Cell(row, col int) cell { return numCell(t.at(row, col)) }

// build turns a decoded table into a Store according to layout.
func build(t table, layout Layout) (*Store, error) {
	n := t.Rows()
	if n == 0 {
		if layout.Dim < 0 {
			return nil, loadErr(-1, nil, "negative dimension %d", layout.Dim)
		}
		return NewBuilder(layout.Dim).Build()
	}

	width := t.Width(0)
	cols, err := layout.resolve(width)
	if err != nil {
		return nil, err
	}

	b := NewBuilder(cols.dim)
	b.Grow(n)
	vec := make([]float64, cols.dim)
	for row := range n {
		if w := t.Width(row); w != width {
			return nil, loadErr(row, nil, "row width %d, expected %d", w, width)
		}
		for j := range vec {
			c := t.Cell(row, cols.offset+j)
			v, ok := c.float()
			if !ok {
				return nil, loadErr(row, nil, "vector component %d is not numeric: %q", j, c.text)
			}
			vec[j] = v
		}
		var path, label string
		if cols.path >= 0 {
			path = t.Cell(row, cols.path).format()
		}
		if cols.label >= 0 {
			label = t.Cell(row, cols.label).format()
		}
		b.Add(vec, path, label)
	}
	return b.Build()
}
