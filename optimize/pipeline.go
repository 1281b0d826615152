// Package optimize implements the rewrite pipeline of spec.md §4.3: an
// ordered sequence of pure passes over a hlim.Circuit, each preserving
// observable behavior at pins and named signals.
package optimize

import (
	"fmt"

	"github.com/synogate/gatery/hlim"
)

// Pass is one rewrite stage. It mutates circuit in place and returns
// an error only for a fatal condition (a combinational cycle, a type
// mismatch produced by the rewrite itself); an unrecognized or
// inapplicable pattern is always a silent no-op, never an error.
type Pass struct {
	Name string
	Run  func(c *hlim.Circuit) error
}

// Pipeline returns the ordered pass list for the given optimization
// level (0-3), matching spec.md §4.3's level-3 description. Level 0
// runs nothing; levels 1 and 2 run only the culling passes
// (cull-unnamed-signals, then also cull-unused), level 2's list
// extending level 1's.
func Pipeline(level int) []Pass {
	all := []Pass{
		{"constant-propagation", ConstantPropagation},
		{"cull-unnamed-signals", CullUnnamedSignals},
		{"cull-unused", CullUnused},
		{"mux-merge", MuxMerge},
		{"mux-selector-negation", MuxSelectorNegation},
		{"rewire-noop-removal", RewireNoopRemoval},
		{"register-mux-enable-fold", RegisterMuxEnableFold},
		{"const-select-mux", ConstSelectMux},
		{"constant-propagation-2", ConstantPropagation},
		{"cull-unused-2", CullUnused},
		{"signal-node-placement", EnsureSignalNodePlacement},
		{"memory-detection", MemoryDetection},
		{"read-before-write", ReadBeforeWriteConversion},
		{"cull-unnamed-signals-2", CullUnnamedSignals},
		{"cull-unused-3", CullUnused},
		{"infer-signal-names", InferSignalNames},
		{"infer-group-instance-names", InferGroupInstanceNames},
	}
	switch {
	case level <= 0:
		return nil
	case level == 1:
		return all[1:2] // cullOrphanedSignalNodes equivalent: cull-unnamed-signals alone
	case level == 2:
		return all[1:3] // adds cull-unused, matching level 2's cullOrphaned+cullUnnamed+cullUnused
	default:
		return all
	}
}

// Optimize runs every pass in Pipeline(level) in order, wrapping any
// error with the name of the pass that produced it.
func Optimize(c *hlim.Circuit, level int) error {
	for _, pass := range Pipeline(level) {
		if err := pass.Run(c); err != nil {
			return fmt.Errorf("optimize pass %q: %w", pass.Name, err)
		}
	}
	return nil
}
