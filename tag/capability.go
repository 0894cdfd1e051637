// Package tag models the technologies a discovered proximity tag
// exposes and resolves them into an ordered, display-ready mapping.
package tag

// Capability identifies one contactless technology a tag exposes.
type Capability int

const (
	CapNDEF Capability = iota
	CapISO7816
	CapISO15693
	CapFeliCa
	CapMifareClassic
	CapMifareUltralight
)

// priorityOrder fixes the iteration order of the resolver. The first
// capability that produces an entry becomes the scan's primary type.
var priorityOrder = [...]Capability{
	CapNDEF,
	CapISO7816,
	CapISO15693,
	CapFeliCa,
	CapMifareClassic,
	CapMifareUltralight,
}

func (c Capability) String() string {
	switch c {
	case CapNDEF:
		return "NDEF"
	case CapISO7816:
		return "ISO7816"
	case CapISO15693:
		return "ISO15693"
	case CapFeliCa:
		return "FeliCa"
	case CapMifareClassic:
		return "MifareClassic"
	case CapMifareUltralight:
		return "MifareUltralight"
	default:
		return "Unknown"
	}
}
