package ndef

import "testing"

func textRecord(payload []byte) Record {
	return Record{TNF: TNFWellKnown, Type: []byte("T"), Payload: payload}
}

func uriRecord(payload []byte) Record {
	return Record{TNF: TNFWellKnown, Type: []byte("U"), Payload: payload}
}

// End-to-end vector: [0x02, 'e','n', 'H','i'] decodes to language "en", text "Hi".
func TestDecodeTextRecord(t *testing.T) {
	v := Decode(textRecord([]byte{0x02, 'e', 'n', 'H', 'i'}))
	if v.Kind != KindText {
		t.Fatalf("expected text value, got %v (%q)", v.Kind, v.Note)
	}
	if v.Language != "en" {
		t.Errorf("language mismatch: got %q, want %q", v.Language, "en")
	}
	if v.Text != "Hi" {
		t.Errorf("text mismatch: got %q, want %q", v.Text, "Hi")
	}
}

// End-to-end vector: [0x02, "example.com"] decodes to "https://www.example.com".
func TestDecodeURIRecord(t *testing.T) {
	v := Decode(uriRecord(append([]byte{0x02}, []byte("example.com")...)))
	if v.Kind != KindURI {
		t.Fatalf("expected uri value, got %v (%q)", v.Kind, v.Note)
	}
	if v.URI != "https://www.example.com" {
		t.Errorf("URI mismatch: got %q, want %q", v.URI, "https://www.example.com")
	}
}

func TestDecodeURIPrefixTable(t *testing.T) {
	tests := []struct {
		code byte
		want string
	}{
		{0x01, "http://www.example.com"},
		{0x02, "https://www.example.com"},
		{0x03, "http://example.com"},
		{0x04, "https://example.com"},
	}

	for _, tt := range tests {
		payload := append([]byte{tt.code}, []byte("example.com")...)
		v := Decode(uriRecord(payload))
		if v.Kind != KindURI {
			t.Fatalf("code 0x%02x: expected uri value, got %v", tt.code, v.Kind)
		}
		if v.URI != tt.want {
			t.Errorf("code 0x%02x: got %q, want %q", tt.code, v.URI, tt.want)
		}
	}
}

// Every identifier code outside 0x01-0x04 passes the suffix through
// unmodified. The incomplete prefix table is documented behavior.
func TestDecodeURIUnlistedCodesPassThrough(t *testing.T) {
	suffix := "example.com/path"

	check := func(code byte) {
		payload := append([]byte{code}, []byte(suffix)...)
		v := Decode(uriRecord(payload))
		if v.Kind != KindURI {
			t.Fatalf("code 0x%02x: expected uri value, got %v", code, v.Kind)
		}
		if v.URI != suffix {
			t.Errorf("code 0x%02x: got %q, want untouched suffix %q", code, v.URI, suffix)
		}
	}

	check(0x00)
	for code := 0x05; code <= 0xFF; code++ {
		check(byte(code))
	}
}

func TestDecodeTextUTF16(t *testing.T) {
	payload := []byte{
		0x82, // UTF-16 flag set, language length 2
		'e', 'n',
		0x48, 0x00, // 'H' UTF-16LE
		0x69, 0x00, // 'i' UTF-16LE
	}
	v := Decode(textRecord(payload))
	if v.Kind != KindText {
		t.Fatalf("expected text value, got %v (%q)", v.Kind, v.Note)
	}
	if v.Text != "Hi" {
		t.Errorf("UTF-16 text mismatch: got %q, want %q", v.Text, "Hi")
	}
}

// Payloads shorter than the declared language-code length must fail
// closed as malformed, never slice out of bounds.
func TestDecodeTextTruncatedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", nil},
		{"lang length past end", []byte{0x05, 'e', 'n'}},
		{"lang length fills max", []byte{0x3F, 'e'}},
		{"odd utf-16 text", []byte{0x82, 'e', 'n', 0x48}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decode(textRecord(tt.payload))
			if v.Kind != KindRaw {
				t.Errorf("expected raw value, got %v", v.Kind)
			}
			if v.Note != "malformed text record" {
				t.Errorf("note mismatch: got %q", v.Note)
			}
		})
	}
}

func TestDecodeUnsupportedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"wrong tnf", Record{TNF: TNFMIME, Type: []byte("T"), Payload: []byte{0x02, 'e', 'n'}}},
		{"empty type", Record{TNF: TNFWellKnown}},
		{"unknown subtype", Record{TNF: TNFWellKnown, Type: []byte("X"), Payload: []byte{0x01}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decode(tt.record)
			if v.Kind != KindRaw || v.Note != "unsupported record" {
				t.Errorf("got kind=%v note=%q, want unsupported raw", v.Kind, v.Note)
			}
		})
	}
}

func TestDecodeEmptyURIPayload(t *testing.T) {
	v := Decode(uriRecord(nil))
	if v.Kind != KindRaw || v.Note != "malformed uri record" {
		t.Errorf("got kind=%v note=%q, want malformed raw", v.Kind, v.Note)
	}
}

// Decode must be total over arbitrary byte sequences: exhaustively walk
// short payloads for both subtypes and make sure nothing panics.
func TestDecodeNeverPanics(t *testing.T) {
	for length := 0; length < 8; length++ {
		payload := make([]byte, length)
		for b := 0; b < 256; b++ {
			if length > 0 {
				payload[0] = byte(b)
			}
			Decode(textRecord(payload))
			Decode(uriRecord(payload))
		}
	}
}

func BenchmarkDecodeTextRecord(b *testing.B) {
	r := textRecord([]byte{0x02, 'e', 'n', 'H', 'e', 'l', 'l', 'o'})
	for i := 0; i < b.N; i++ {
		_ = Decode(r)
	}
}

func BenchmarkDecodeURIRecord(b *testing.B) {
	r := uriRecord(append([]byte{0x04}, []byte("example.com")...))
	for i := 0; i < b.N; i++ {
		_ = Decode(r)
	}
}
