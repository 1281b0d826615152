package bitvec

// ConstGen and WalkGen are small value-generating closures used to seed
// deterministic test data for fixture circuits, adapted from zeonica's
// util/valgen.go helpers (MakeConstGen / MakeIncreasingGen).

// ConstGen returns a generator that always yields the same constant.
func ConstGen(constant uint64) func() uint64 {
	return func() uint64 {
		return constant
	}
}

// WalkGen returns a generator that yields start, then increments by
// step on every subsequent call.
func WalkGen(start uint64, step uint64) func() uint64 {
	current := start
	first := true
	return func() uint64 {
		if first {
			first = false
			return current
		}
		current += step
		return current
	}
}
