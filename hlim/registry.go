package hlim

// idRegistry allocates monotonically increasing NodeIds and keeps an
// insertion-ordered name registry, adapted from zeonica's
// confignew.NameIDBinding (which bound names to distributed integer ids
// for register files and directions). Here the same bind-as-you-go
// pattern allocates stable node/clock ids instead of register names,
// and preserves insertion order so CopySubnet's "sorted by source id"
// determinism (spec.md §4.1) falls out of iteration order for free.
type idRegistry struct {
	next  uint64
	names []string // insertion order
}

func newIDRegistry() *idRegistry {
	return &idRegistry{next: 1} // 0 is reserved as "no id"
}

// allocate returns a fresh, never-reused id and records name (which may
// be empty) for debugging.
func (r *idRegistry) allocate(name string) uint64 {
	id := r.next
	r.next++
	r.names = append(r.names, name)
	return id
}
