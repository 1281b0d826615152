package hlim

import (
	"math/big"

	"github.com/sarchlab/akita/v4/sim"
)

// TriggerEvent selects which edge(s) of a clock drive its registers.
type TriggerEvent int

const (
	Rising TriggerEvent = iota
	Falling
	Both
)

// ResetType selects how (and whether) a clock's reset behaves.
type ResetType int

const (
	NoReset ResetType = iota
	SyncReset
	AsyncReset
)

// RegisterInitMode and RegisterEnableMode describe a clock's default
// register semantics (initialization and enable handling), which a
// register node inherits unless locally overridden.
type RegisterInitMode int

const (
	InitToResetValue RegisterInitMode = iota
	InitToUndefined
)

type RegisterEnableMode int

const (
	EnableGatesData RegisterEnableMode = iota
	EnableGatesClock
)

// ClockAttributes bundles the per-clock behavioral knobs spec.md §3
// assigns to a Clock: trigger edge, reset polarity/synchronicity, reset
// hold requirements, and default register semantics.
type ClockAttributes struct {
	Trigger           TriggerEvent
	Reset             ResetType
	ResetHighActive   bool
	ResetHoldMinTime  sim.VTimeInSec
	ResetHoldMinCycles int
	RegisterInit      RegisterInitMode
	RegisterEnable    RegisterEnableMode
}

// clockKindTag distinguishes a root clock from a derived clock, the Go
// rendering of the multiple-inheritance Clock -> RootClock/DerivedClock
// hierarchy flagged in Design Notes §9 ("A tagged enum with shared
// header fields").
type clockKindTag int

const (
	rootClockTag clockKindTag = iota
	derivedClockTag
)

// Clock is one node of the clock tree: either a RootClock (absolute
// frequency) or a DerivedClock (rational multiplier relative to its
// parent). Use NewRootClock / DeriveClock to construct.
type Clock struct {
	id   uint64
	name string
	kind clockKindTag

	// set only for root clocks.
	absFreq sim.Freq

	// set only for derived clocks.
	parent     *Clock
	multiplier *big.Rat

	attrs ClockAttributes

	// clockPinSource/resetPinSource point at the canonical clock this
	// one shares a physical pin/reset tree with (itself if it is the
	// canonical source). Several logical clocks may share one physical
	// source; ShareClockPinWith records that relationship.
	clockPinSource *Clock
	resetPinSource *Clock

	children []*Clock
}

// Id returns the clock's stable id.
func (c *Clock) Id() uint64 { return c.id }

// Name returns the clock's debug name.
func (c *Clock) Name() string { return c.name }

// IsRoot reports whether this is a root (not derived) clock.
func (c *Clock) IsRoot() bool { return c.kind == rootClockTag }

// Parent returns the clock this one is derived from, or nil for a root
// clock.
func (c *Clock) Parent() *Clock { return c.parent }

// Attributes returns the clock's behavioral attributes.
func (c *Clock) Attributes() ClockAttributes { return c.attrs }

// SetAttributes replaces the clock's behavioral attributes.
func (c *Clock) SetAttributes(a ClockAttributes) { c.attrs = a }

// AbsoluteFrequency returns this clock's absolute frequency, computed
// by walking up to the root and applying every derived multiplier
// along the way (the match-on-variant rendering of the original
// getAbsoluteFrequency()/getFrequencyRelativeTo() virtual pair).
func (c *Clock) AbsoluteFrequency() sim.Freq {
	switch c.kind {
	case rootClockTag:
		return c.absFreq
	default:
		parentFreq := float64(c.parent.AbsoluteFrequency())
		ratio, _ := c.multiplier.Float64()
		return sim.Freq(parentFreq * ratio)
	}
}

// FrequencyRelativeTo returns this clock's frequency expressed as a
// ratio of other's frequency; both must share a root.
func (c *Clock) FrequencyRelativeTo(other *Clock) *big.Rat {
	mine := c.absoluteRatioFromRoot()
	theirs := other.absoluteRatioFromRoot()
	return new(big.Rat).Quo(mine, theirs)
}

func (c *Clock) absoluteRatioFromRoot() *big.Rat {
	if c.kind == rootClockTag {
		return big.NewRat(1, 1)
	}
	return new(big.Rat).Mul(c.multiplier, c.parent.absoluteRatioFromRoot())
}

// ClockPinSource returns the canonical clock this clock shares a
// physical clock pin with (itself if it is canonical).
func (c *Clock) ClockPinSource() *Clock {
	if c.clockPinSource == nil {
		return c
	}
	return c.clockPinSource
}

// ResetPinSource returns the canonical clock this clock shares a
// physical reset tree with (itself if it is canonical).
func (c *Clock) ResetPinSource() *Clock {
	if c.resetPinSource == nil {
		return c
	}
	return c.resetPinSource
}

// ShareClockPinWith declares that c and other are driven by the same
// physical clock pin.
func (c *Clock) ShareClockPinWith(other *Clock) { c.clockPinSource = other.ClockPinSource() }

// ShareResetPinWith declares that c and other share one physical reset
// tree.
func (c *Clock) ShareResetPinWith(other *Clock) { c.resetPinSource = other.ResetPinSource() }
