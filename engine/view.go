package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine reads caller data through RecordView and never copies it.
//
//   DomainView[T]  — typed structs read through registered accessors
//   SubView        — index list into a parent view (groups, filters)
// ============================================================================

// RecordView provides indexed access to a dataset. Out-of-range indices and
// unknown keys read as "" and 0.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// keySet collects keys in first-seen order.
type keySet struct {
	order []string
	seen  map[string]struct{}
}

func (k *keySet) add(key string) bool {
	if k.seen == nil {
		k.seen = make(map[string]struct{})
	}
	if _, ok := k.seen[key]; ok {
		return false
	}
	k.seen[key] = struct{}{}
	k.order = append(k.order, key)
	return true
}

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is the subset of a parent view at the given indices.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

// index maps a position in the subset to the parent, or -1.
func (v *SubView) index(i int) int {
	if i < 0 || i >= len(v.indices) {
		return -1
	}
	return v.indices[i]
}

func (v *SubView) Dimension(i int, key string) string {
	return v.parent.Dimension(v.index(i), key)
}

func (v *SubView) Measure(i int, key string) float64 {
	return v.parent.Measure(v.index(i), key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER
// ============================================================================
//
//	adapter := engine.NewDomainAdapter[sales.OrderRecord]().
//	    Dimension("product", func(r sales.OrderRecord) string { return r.Product }).
//	    Measure("net_amount", func(r sales.OrderRecord) float64 { return r.NetAmount })
//
//	view := adapter.Bind(records)
//	groups := engine.GroupAndAggregate(view, "product", "net_amount", engine.AggSum, engine.SortValueDesc, 0)
//
// ============================================================================

// DomainAdapter declares how a struct type exposes dimensions and measures.
// Build it once at package init; Bind is safe for concurrent use afterwards.
type DomainAdapter[T any] struct {
	accessors[T]
}

type accessors[T any] struct {
	dimKeys keySet
	mesKeys keySet
	dims    map[string]func(T) string
	meas    map[string]func(T) float64
}

// NewDomainAdapter creates an adapter for T with no fields registered.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{accessors[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}}
}

// Dimension registers (or replaces) a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	a.dimKeys.add(key)
	a.dims[key] = fn
	return a
}

// Measure registers (or replaces) a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	a.mesKeys.add(key)
	a.meas[key] = fn
	return a
}

// Bind views data through the adapter. The slice is referenced, not copied.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{data: data, acc: &a.accessors}
}

// DomainView is a RecordView over typed structs.
type DomainView[T any] struct {
	data []T
	acc  *accessors[T]
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	fn, ok := v.acc.dims[key]
	if !ok || i < 0 || i >= len(v.data) {
		return ""
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	fn, ok := v.acc.meas[key]
	if !ok || i < 0 || i >= len(v.data) {
		return 0
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.acc.dimKeys.order }
func (v *DomainView[T]) MeasureKeys() []string   { return v.acc.mesKeys.order }
