package ndef

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// Kind discriminates the variants of a decoded value.
type Kind int

const (
	// KindRaw covers unrecognized or malformed records; Note says why.
	KindRaw Kind = iota
	// KindText is a decoded well-known Text record.
	KindText
	// KindURI is a decoded well-known URI record.
	KindURI
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindURI:
		return "uri"
	default:
		return "raw"
	}
}

// Value is the decoded form of an NDEF record. Which fields are
// meaningful depends on Kind: Language/Text for KindText, URI for
// KindURI, Note for KindRaw.
type Value struct {
	Kind     Kind
	Language string
	Text     string
	URI      string
	Note     string
}

// Raw builds the fallback variant for records that could not be decoded.
func Raw(note string) Value {
	return Value{Kind: KindRaw, Note: note}
}

// uriPrefixes maps URI record identifier codes to their literal prefix.
//
// Only codes 0x01-0x04 are populated. The NFC Forum URI RTD defines
// ~35 codes; every unlisted code (including 0x00 "no prefix") passes
// the suffix through unmodified. This is a known gap kept for
// compatibility with the behavior the tests pin down, not an oversight.
var uriPrefixes = map[byte]string{
	0x01: "http://www.",
	0x02: "https://www.",
	0x03: "http://",
	0x04: "https://",
}

// Decode converts a single record into a display-ready value.
//
// Decode is total: any byte sequence yields a Value, with malformed or
// unsupported input failing closed to the Raw variant. It never reads
// past the declared payload.
func Decode(r Record) Value {
	if !r.IsWellKnown() {
		return Raw("unsupported record")
	}

	switch r.Type[0] {
	case TypeText:
		return decodeText(r.Payload)
	case TypeURI:
		return decodeURI(r.Payload)
	default:
		return Raw("unsupported record")
	}
}

// decodeText parses a Text record payload: a status byte, a language
// code of the length given by the status byte's low 6 bits, then the
// text itself.
func decodeText(payload []byte) Value {
	if len(payload) < 1 {
		return Raw("malformed text record")
	}

	status := payload[0]
	langLength := int(status & 0x3F)
	isUTF16 := (status & 0x80) != 0

	textStart := 1 + langLength
	if textStart > len(payload) {
		return Raw("malformed text record")
	}

	lang := string(payload[1:textStart])
	textBytes := payload[textStart:]

	text := ""
	if isUTF16 {
		if len(textBytes)%2 != 0 {
			return Raw("malformed text record")
		}
		text = decodeUTF16LE(textBytes)
	} else {
		text = string(textBytes)
	}

	return Value{Kind: KindText, Language: lang, Text: text}
}

// decodeURI parses a URI record payload: a prefix identifier code
// followed by the URI suffix.
func decodeURI(payload []byte) Value {
	if len(payload) < 1 {
		return Raw("malformed uri record")
	}
	return Value{
		Kind: KindURI,
		URI:  uriPrefixes[payload[0]] + string(payload[1:]),
	}
}

func decodeUTF16LE(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	u16s := make([]uint16, len(b)/2)
	for i := range u16s {
		u16s[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return strings.TrimSpace(string(utf16.Decode(u16s)))
}
