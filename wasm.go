package wasmbridge

// Memory represents one linear memory space taking part in a bridged call.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	Size() uint32
}

// Space identifies one of the two memories joined by the bridge.
type Space uint8

const (
	// SpaceA is the calling (guest) module's memory.
	SpaceA Space = iota
	// SpaceB is the callee (host module) memory that contains the ring region.
	SpaceB
)

func (s Space) String() string {
	switch s {
	case SpaceA:
		return "A"
	case SpaceB:
		return "B"
	default:
		return "?"
	}
}

// Null is the pointer sentinel meaning "no object" in either space.
const Null uint32 = 0
