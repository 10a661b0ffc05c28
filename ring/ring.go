package ring

import (
	"fmt"

	"github.com/wippyai/wasm-bridge/errors"
)

// Region is the reserved staging range inside the host module's memory.
type Region struct {
	Base uint32
	Size uint32
}

// End returns the first offset past the region.
func (r Region) End() uint64 {
	return uint64(r.Base) + uint64(r.Size)
}

func (r Region) String() string {
	return fmt.Sprintf("[%#x, %#x)", r.Base, r.End())
}

// Validate checks that the region does not start at the null offset and that
// every width fits in it.
// A width larger than the region would silently overwrite neighbouring slots on
// wrap, which cannot be detected per call.
func (r Region) Validate(widths ...uint32) error {
	if r.Base == 0 {
		return errors.New(errors.PhaseSetup, errors.KindInvalidInput).
			Value(r.Base).
			Detail("ring region %s starts at offset 0, which callees read as null", r).
			Build()
	}
	if r.Size == 0 {
		return errors.RegionTooSmall("ring region", 1, 0)
	}
	for _, w := range widths {
		if w > r.Size {
			return errors.RegionTooSmall(fmt.Sprintf("%d-byte record", w), w, r.Size)
		}
	}
	return nil
}

// Observer receives allocator events.
type Observer interface {
	Allocated(size, cursor uint32)
	Wrapped()
}

// Stats is a snapshot of allocator counters.
type Stats struct {
	Region      Region
	Cursor      uint32
	Allocations uint64
	Wraps       uint64
	Bytes       uint64
}

// Allocator is a bump allocator over a Region with wrap-around reuse.
type Allocator struct {
	observer    Observer
	region      Region
	cursor      uint32
	allocations uint64
	wraps       uint64
	bytes       uint64
}

// New creates an allocator with its cursor at the start of region.
func New(region Region) *Allocator {
	return &Allocator{region: region}
}

// SetObserver installs o to receive allocation and wrap events. nil removes it.
func (a *Allocator) SetObserver(o Observer) {
	a.observer = o
}

// Region returns the region the allocator hands slots out of.
func (a *Allocator) Region() Region {
	return a.region
}

// Cursor returns the current offset relative to the region base.
func (a *Allocator) Cursor() uint32 {
	return a.cursor
}

// Allocate returns the absolute offset of a size-byte slot.
// size must not exceed the region size; that is checked once by Region.Validate,
// not here.
func (a *Allocator) Allocate(size uint32) uint32 {
	if uint64(a.cursor)+uint64(size) > uint64(a.region.Size) {
		a.wrap()
	}

	slot := a.region.Base + a.cursor
	a.cursor += size
	a.allocations++
	a.bytes += uint64(size)

	if a.observer != nil {
		a.observer.Allocated(size, a.cursor)
	}
	return slot
}

// Reserve wraps the cursor now if total bytes would not fit before the region end.
// Staging every slot of one call after a single Reserve keeps those slots
// contiguous, so none of them can wrap onto an earlier one from the same call.
func (a *Allocator) Reserve(total uint32) {
	if uint64(a.cursor)+uint64(total) > uint64(a.region.Size) {
		a.wrap()
	}
}

func (a *Allocator) wrap() {
	a.cursor = 0
	a.wraps++
	if a.observer != nil {
		a.observer.Wrapped()
	}
}

// Reset moves the cursor back to the start of the region and clears counters.
func (a *Allocator) Reset() {
	a.cursor = 0
	a.allocations = 0
	a.wraps = 0
	a.bytes = 0
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats {
	return Stats{
		Region:      a.region,
		Cursor:      a.cursor,
		Allocations: a.allocations,
		Wraps:       a.wraps,
		Bytes:       a.bytes,
	}
}
