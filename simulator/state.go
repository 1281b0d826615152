package simulator

import "github.com/synogate/gatery/bitvec"

// DataState is the simulator's packed execution-time storage: every
// node output and internal state slot lives at a disjoint bit offset
// into one bitvec.State (spec.md §4.4 "DataState"), grown on demand by
// Alloc as the compiler lays nodes out.
type DataState struct {
	Bits *bitvec.State
	next int
}

// NewDataState returns an empty DataState ready for allocation.
func NewDataState() *DataState {
	return &DataState{Bits: bitvec.New(0)}
}

// Alloc reserves width bits and returns their starting offset,
// growing the underlying bitvec.State to fit. width may be zero (a
// node with no state of that kind), in which case the returned offset
// is never read.
func (d *DataState) Alloc(width int) int {
	off := d.next
	d.next += width
	if d.next > d.Bits.Size() {
		d.Bits.Resize(d.next)
	}
	return off
}

// Size returns the number of bits allocated so far.
func (d *DataState) Size() int { return d.next }
