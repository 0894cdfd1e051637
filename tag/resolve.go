package tag

import (
	"fmt"

	"github.com/nedpals/tagscan/ndef"
)

// resolvers is the dispatch table keyed by capability. Presence-only
// technologies get a fixed description; NDEF additionally decodes the
// stored message.
var resolvers = map[Capability]func(Handle, *ScanResult){
	CapNDEF:             resolveNDEF,
	CapISO7816:          presence(CapISO7816, "Smart Card detected"),
	CapISO15693:         presence(CapISO15693, "ISO 15693 tag detected"),
	CapFeliCa:           presence(CapFeliCa, "FeliCa tag detected"),
	CapMifareClassic:    presence(CapMifareClassic, "MIFARE Classic tag detected"),
	CapMifareUltralight: presence(CapMifareUltralight, "MIFARE Ultralight tag detected"),
}

// Resolve inspects the handle's capability set and produces the ordered
// label -> value mapping for display. Capabilities are visited in the
// fixed priority order (NDEF first), so the primary type is stable
// regardless of the order the platform reports them in.
//
// Resolve never fails: decode errors inside individual records are
// recovered by dropping the record, and an empty capability set yields
// an empty result.
func Resolve(h Handle) *ScanResult {
	result := NewScanResult()

	present := make(map[Capability]bool)
	for _, c := range h.Capabilities() {
		present[c] = true
	}

	for _, c := range priorityOrder {
		if !present[c] {
			continue
		}
		if resolve, ok := resolvers[c]; ok {
			resolve(h, result)
		}
	}

	return result
}

func presence(c Capability, description string) func(Handle, *ScanResult) {
	label := c.String()
	return func(_ Handle, result *ScanResult) {
		result.Add(label, description)
	}
}

func resolveNDEF(h Handle, result *ScanResult) {
	nh, ok := h.NDEF()
	if !ok {
		return
	}

	writable, err := nh.IsWritable()
	if err != nil {
		// Writability unknown; report presence and skip the message
		// rather than failing the whole scan.
		result.Add(CapNDEF.String(), "NDEF tag")
		return
	}
	if writable {
		result.Add(CapNDEF.String(), "Writable NDEF tag")
	} else {
		result.Add(CapNDEF.String(), "Read-only NDEF tag")
	}

	msg, err := nh.ReadMessage()
	if err != nil || msg == nil {
		return
	}

	for _, record := range msg.Records() {
		switch v := ndef.Decode(record); v.Kind {
		case ndef.KindText:
			result.Add("Text", fmt.Sprintf("Language: %s, Text: %s", v.Language, v.Text))
		case ndef.KindURI:
			result.Add("URL", v.URI)
		default:
			// Raw values are dropped; a clean display wins over
			// completeness here.
		}
	}
}
