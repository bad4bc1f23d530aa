package signature

import (
	"iter"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Record is one signature: a feature vector plus the image it came from.
type Record struct {
	// ID is the record's ordinal position in the store.
	ID int
	// Vector must be treated as read-only; it aliases the store arena.
	Vector []float64
	Path   string
	Label  string
}

// Store is an ordered, immutable collection of signatures.
//
// Vectors live in one contiguous row-major arena. A Store is never mutated
// after construction, so any number of goroutines may read it concurrently.
type Store struct {
	dim    int
	data   []float64
	paths  []string
	labels []string

	labelIndex map[string]*roaring.Bitmap
	labelOrder []string
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.paths)
}

// Dim returns the vector length shared by every record.
func (s *Store) Dim() int {
	return s.dim
}

// SizeBytes approximates the memory held by the store.
func (s *Store) SizeBytes() int64 {
	n := int64(len(s.data)) * 8
	for i := range s.paths {
		n += int64(len(s.paths[i]) + len(s.labels[i]))
	}
	return n
}

// Get returns the record at ordinal id.
func (s *Store) Get(id int) (Record, error) {
	if id < 0 || id >= s.Len() {
		return Record{}, &ErrOutOfRange{ID: id, Len: s.Len()}
	}
	return s.record(id), nil
}

// Vector returns the vector of record id without bounds checking beyond the
// slice's own. Callers iterate 0..Len()-1.
func (s *Store) Vector(id int) []float64 {
	off := id * s.dim
	return s.data[off : off+s.dim : off+s.dim]
}

// Path returns the path of record id.
func (s *Store) Path(id int) string { return s.paths[id] }

// Label returns the label of record id.
func (s *Store) Label(id int) string { return s.labels[id] }

func (s *Store) record(id int) Record {
	return Record{
		ID:     id,
		Vector: s.Vector(id),
		Path:   s.paths[id],
		Label:  s.labels[id],
	}
}

// All iterates the records in store order.
func (s *Store) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for id := range s.Len() {
			if !yield(id, s.record(id)) {
				return
			}
		}
	}
}

// Labels returns the distinct non-empty labels in order of first appearance.
func (s *Store) Labels() []string {
	return slices.Clone(s.labelOrder)
}

// LabelBitmap returns the ids of records carrying label. The bitmap is a
// copy and may be modified by the caller.
func (s *Store) LabelBitmap(label string) *roaring.Bitmap {
	if bm, ok := s.labelIndex[label]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// Select returns the ids of records whose label is any of labels.
func (s *Store) Select(labels ...string) *roaring.Bitmap {
	bms := make([]*roaring.Bitmap, 0, len(labels))
	for _, l := range labels {
		if bm, ok := s.labelIndex[l]; ok {
			bms = append(bms, bm)
		}
	}
	if len(bms) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(bms...)
}

// Builder accumulates records and produces an immutable Store.
// A Builder is not safe for concurrent use.
type Builder struct {
	dim    int
	data   []float64
	paths  []string
	labels []string
	err    error
}

// NewBuilder creates a Builder. dim 0 takes the length of the first vector.
func NewBuilder(dim int) *Builder {
	return &Builder{dim: dim}
}

// Grow reserves space for n more records of the builder's dimension.
func (b *Builder) Grow(n int) {
	if b.dim > 0 {
		b.data = slices.Grow(b.data, n*b.dim)
	}
	b.paths = slices.Grow(b.paths, n)
	b.labels = slices.Grow(b.labels, n)
}

// Add appends a record. The vector is copied. Errors are sticky and
// reported by Build.
func (b *Builder) Add(vector []float64, path, label string) {
	if b.err != nil {
		return
	}
	row := len(b.paths)
	if b.dim == 0 {
		if len(vector) == 0 {
			b.err = loadErr(row, nil, "empty vector")
			return
		}
		b.dim = len(vector)
	}
	if len(vector) != b.dim {
		b.err = loadErr(row, nil, "vector length %d, expected %d", len(vector), b.dim)
		return
	}
	for j, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.err = loadErr(row, nil, "non-finite value %v in vector component %d", v, j)
			return
		}
	}
	if row == math.MaxUint32 {
		b.err = loadErr(row, nil, "store exceeds %d records", uint32(math.MaxUint32))
		return
	}
	b.data = append(b.data, vector...)
	b.paths = append(b.paths, path)
	b.labels = append(b.labels, label)
}

// Len returns the number of records added so far.
func (b *Builder) Len() int {
	return len(b.paths)
}

// Build validates and returns the Store.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}

	s := &Store{
		dim:        b.dim,
		data:       slices.Clip(b.data),
		paths:      slices.Clip(b.paths),
		labels:     slices.Clip(b.labels),
		labelIndex: make(map[string]*roaring.Bitmap),
	}
	for id, label := range s.labels {
		if label == "" {
			continue
		}
		bm, ok := s.labelIndex[label]
		if !ok {
			bm = roaring.New()
			s.labelIndex[label] = bm
			s.labelOrder = append(s.labelOrder, label)
		}
		bm.Add(uint32(id))
	}
	for _, bm := range s.labelIndex {
		bm.RunOptimize()
	}

	return s, nil
}

// NewStore builds a Store from in-memory records. Record IDs are ignored;
// ordinals follow slice order.
func NewStore(records ...Record) (*Store, error) {
	b := NewBuilder(0)
	b.Grow(len(records))
	for _, r := range records {
		b.Add(r.Vector, r.Path, r.Label)
	}
	return b.Build()
}
