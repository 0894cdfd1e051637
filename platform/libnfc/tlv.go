package libnfc

// Type 2 tag TLV block types.
const (
	tlvNull       = 0x00
	tlvNDEF       = 0x03
	tlvTerminator = 0xFE
)

// findNDEFTLV scans a Type 2 tag memory dump for the NDEF Message TLV
// (type 0x03) and returns its value. Length fields use the short form
// (one byte) or the long form (0xFF plus two big-endian bytes). Every
// bound is checked before slicing; malformed structures return false.
func findNDEFTLV(data []byte) ([]byte, bool) {
	offset := 0
	for offset < len(data) {
		switch data[offset] {
		case tlvNull:
			offset++
			continue
		case tlvTerminator:
			return nil, false
		}

		if offset+1 >= len(data) {
			return nil, false
		}

		length := int(data[offset+1])
		valueStart := offset + 2
		if data[offset+1] == 0xFF {
			if offset+3 >= len(data) {
				return nil, false
			}
			length = int(data[offset+2])<<8 | int(data[offset+3])
			valueStart = offset + 4
		}

		if valueStart+length > len(data) {
			return nil, false
		}
		if data[offset] == tlvNDEF {
			return data[valueStart : valueStart+length], true
		}
		offset = valueStart + length
	}
	return nil, false
}
