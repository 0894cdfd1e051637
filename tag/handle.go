package tag

import "github.com/nedpals/tagscan/ndef"

// Handle is the platform layer's view of a discovered tag. A handle
// exposes zero or more capabilities; an empty set is valid but yields
// no decodable data.
type Handle interface {
	// UID returns the tag's unique identifier as an uppercase hex
	// string, or "" when the platform does not expose one.
	UID() string

	// Capabilities returns the technologies this tag exposes.
	Capabilities() []Capability

	// NDEF returns the typed accessor for the NDEF capability.
	// ok is false when the tag does not expose NDEF.
	NDEF() (NDEFHandle, bool)
}

// NDEFHandle is the per-capability accessor for NDEF-formatted tags.
type NDEFHandle interface {
	IsWritable() (bool, error)

	// ReadMessage returns the stored NDEF message, or nil when the tag
	// is NDEF-capable but currently holds no message.
	ReadMessage() (*ndef.Message, error)
}
