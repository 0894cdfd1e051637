// Package ndef parses NFC Data Exchange Format messages and decodes
// well-known records (Text, URI) into display-ready values.
//
// The package is decode-only: tagscan never writes to tags, so there is
// no encoder counterpart here.
package ndef

import (
	"encoding/binary"
	"fmt"
)

// Type Name Format values (lower 3 bits of the record header).
const (
	TNFEmpty     byte = 0x00
	TNFWellKnown byte = 0x01
	TNFMIME      byte = 0x02
	TNFAbsolute  byte = 0x03
	TNFExternal  byte = 0x04
	TNFUnknown   byte = 0x05
	TNFUnchanged byte = 0x06
)

// Well-known record subtypes (first byte of the type field).
const (
	TypeText byte = 0x54 // 'T'
	TypeURI  byte = 0x55 // 'U'
)

// Record is a single NDEF record as read from a tag.
// Immutable once parsed.
type Record struct {
	TNF     byte
	Type    []byte
	ID      []byte
	Payload []byte
}

// IsWellKnown reports whether the record uses the NFC Forum well-known
// type space and carries a non-empty type field.
func (r Record) IsWellKnown() bool {
	return r.TNF == TNFWellKnown && len(r.Type) > 0
}

// Message is an ordered sequence of NDEF records.
type Message struct {
	records []Record
}

// Records returns the parsed records in message order.
func (m *Message) Records() []Record {
	if m == nil {
		return nil
	}
	return m.records
}

// ParseMessage parses raw NDEF message bytes into a Message.
// Every length field is validated against the remaining input before
// slicing; truncated input yields an error, never a panic.
func ParseMessage(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty NDEF message")
	}

	var records []Record
	offset := 0

	for offset < len(data) {
		header := data[offset]
		me := (header & 0x40) != 0 // Message End
		sr := (header & 0x10) != 0 // Short Record
		il := (header & 0x08) != 0 // ID Length present
		tnf := header & 0x07

		pos := offset + 1

		if pos+1 > len(data) {
			return nil, fmt.Errorf("truncated type length at offset %d", pos)
		}
		typeLength := int(data[pos])
		pos++

		var payloadLength int
		if sr {
			if pos+1 > len(data) {
				return nil, fmt.Errorf("truncated payload length at offset %d", pos)
			}
			payloadLength = int(data[pos])
			pos++
		} else {
			if pos+4 > len(data) {
				return nil, fmt.Errorf("truncated payload length at offset %d", pos)
			}
			payloadLength = int(binary.BigEndian.Uint32(data[pos : pos+4]))
			pos += 4
		}

		var idLength int
		if il {
			if pos+1 > len(data) {
				return nil, fmt.Errorf("truncated ID length at offset %d", pos)
			}
			idLength = int(data[pos])
			pos++
		}

		if pos+typeLength > len(data) {
			return nil, fmt.Errorf("truncated type field at offset %d", pos)
		}
		recordType := make([]byte, typeLength)
		copy(recordType, data[pos:pos+typeLength])
		pos += typeLength

		var recordID []byte
		if il && idLength > 0 {
			if pos+idLength > len(data) {
				return nil, fmt.Errorf("truncated ID field at offset %d", pos)
			}
			recordID = make([]byte, idLength)
			copy(recordID, data[pos:pos+idLength])
			pos += idLength
		}

		if pos+payloadLength > len(data) {
			return nil, fmt.Errorf("truncated payload at offset %d", pos)
		}
		payload := make([]byte, payloadLength)
		copy(payload, data[pos:pos+payloadLength])
		pos += payloadLength

		records = append(records, Record{
			TNF:     tnf,
			Type:    recordType,
			ID:      recordID,
			Payload: payload,
		})

		offset = pos
		if me {
			break
		}
	}

	return &Message{records: records}, nil
}
