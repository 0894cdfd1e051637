package libnfc

import (
	"fmt"

	"github.com/clausecker/freefare"

	"github.com/nedpals/tagscan/ndef"
	"github.com/nedpals/tagscan/tag"
)

// wrapFreefareTag maps a freefare tag onto the capability model.
// Ultralight-family tags carry NDEF in their user memory; Classic tags
// are reported presence-only since NDEF there sits behind authenticated
// sector access, and DESFire surfaces as an ISO7816 smart card.
func wrapFreefareTag(ff freefare.Tag) tag.Handle {
	switch t := ff.(type) {
	case freefare.UltralightTag:
		return &freefareHandle{
			uid:  ff.UID(),
			caps: []tag.Capability{tag.CapNDEF, tag.CapMifareUltralight},
			ndef: &ultralightNDEF{tag: t},
		}
	case freefare.ClassicTag:
		return &freefareHandle{
			uid:  ff.UID(),
			caps: []tag.Capability{tag.CapMifareClassic},
		}
	case freefare.DESFireTag:
		return &freefareHandle{
			uid:  ff.UID(),
			caps: []tag.Capability{tag.CapISO7816},
		}
	default:
		return nil
	}
}

// freefareHandle adapts a freefare tag to tag.Handle.
type freefareHandle struct {
	uid  string
	caps []tag.Capability
	ndef tag.NDEFHandle
}

func (h *freefareHandle) UID() string { return h.uid }

func (h *freefareHandle) Capabilities() []tag.Capability { return h.caps }

func (h *freefareHandle) NDEF() (tag.NDEFHandle, bool) {
	if h.ndef == nil {
		return nil, false
	}
	return h.ndef, true
}

// staticHandle covers targets identified by modulation polling alone
// (Type 4A smart cards, FeliCa); no further decoding is possible there.
type staticHandle struct {
	uid  string
	caps []tag.Capability
}

func (h *staticHandle) UID() string                    { return h.uid }
func (h *staticHandle) Capabilities() []tag.Capability { return h.caps }
func (h *staticHandle) NDEF() (tag.NDEFHandle, bool)   { return nil, false }

// ultralightNDEF reads NDEF data from MIFARE Ultralight user memory.
type ultralightNDEF struct {
	tag freefare.UltralightTag
}

// IsWritable inspects the static lock bytes in page 2; any set lock bit
// means the tag has been (partially) locked.
func (u *ultralightNDEF) IsWritable() (bool, error) {
	if err := u.tag.Connect(); err != nil {
		return false, fmt.Errorf("ultralight connect: %w", err)
	}
	defer u.tag.Disconnect()

	page, err := u.tag.ReadPage(2)
	if err != nil {
		return false, fmt.Errorf("reading lock bytes: %w", err)
	}
	return page[2] == 0 && page[3] == 0, nil
}

// ReadMessage walks the user memory pages, extracts the NDEF message
// TLV and parses it. Returns nil when the tag holds no NDEF TLV.
func (u *ultralightNDEF) ReadMessage() (*ndef.Message, error) {
	if err := u.tag.Connect(); err != nil {
		return nil, fmt.Errorf("ultralight connect: %w", err)
	}
	defer u.tag.Disconnect()

	// User memory starts at page 4; plain Ultralight has 16 pages,
	// Ultralight C has 48.
	maxPages := byte(16)
	if u.tag.Type() == freefare.UltralightC {
		maxPages = 48
	}

	var raw []byte
	for page := byte(4); page < maxPages; page++ {
		data, err := u.tag.ReadPage(page)
		if err != nil {
			// Pages past the readable area fail; parse what we have.
			break
		}
		raw = append(raw, data[:]...)
	}

	payload, ok := findNDEFTLV(raw)
	if !ok {
		return nil, nil
	}
	return ndef.ParseMessage(payload)
}
