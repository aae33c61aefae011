package resource

// Resource is the narrow, type-erased view of a Handle[T] that the graph
// and node packages wire through slots. Slots are heterogeneous at the
// graph level — a single input array can, in principle, hold resources of
// different concrete Go types — so wiring code holds this interface and a
// node's own Execute/Compile implementation recovers the concrete type with
// As, matching the exact DataType check the wiring layer performed when the
// edge was connected.
type Resource interface {
	Key() Key
	Lifetime() Lifetime
	State() State
	Ready() bool
	Generation() uint64
}

// As attempts to recover a *Handle[T] from a Resource. ok is false if r is
// nil or not a *Handle[T].
func As[T any](r Resource) (h *Handle[T], ok bool) {
	if r == nil {
		return nil, false
	}
	h, ok = r.(*Handle[T])
	return h, ok
}
