package scan

import (
	"time"

	"github.com/google/uuid"
)

// HistoryCapacity is the fixed size of the scan history ring.
const HistoryCapacity = 10

// HistoryEntry is one completed scan. Immutable; lives only in process
// memory and is destroyed on exit.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	ScannedAt   time.Time `json:"scannedAt"` // second precision
	PrimaryType string    `json:"primaryType"`
}

// HistoryRing is a bounded, newest-first log of completed scans. It is
// the sole owner of its entries; Entries hands out copies.
//
// HistoryRing is not safe for concurrent use on its own; the session
// controller serializes access to it.
type HistoryRing struct {
	clock   Clock
	entries []HistoryEntry
}

// NewHistoryRing creates an empty ring. A nil clock defaults to the
// wall clock.
func NewHistoryRing(clock Clock) *HistoryRing {
	if clock == nil {
		clock = RealClock{}
	}
	return &HistoryRing{clock: clock}
}

// Record inserts a new entry at index 0, stamped with the current time
// truncated to second precision, evicting the oldest entry once the
// ring exceeds its capacity.
func (h *HistoryRing) Record(primaryType string) HistoryEntry {
	entry := HistoryEntry{
		ID:          uuid.New(),
		ScannedAt:   h.clock.Now().Truncate(time.Second),
		PrimaryType: primaryType,
	}

	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > HistoryCapacity {
		h.entries = h.entries[:HistoryCapacity]
	}
	return entry
}

// Entries returns the full ordered sequence, newest first.
func (h *HistoryRing) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded entries.
func (h *HistoryRing) Len() int {
	return len(h.entries)
}
