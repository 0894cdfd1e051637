package tag

// Entry is a single label/value pair in a ScanResult.
type Entry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ScanResult is an insertion-ordered mapping from technology label to
// display string, produced fresh for every scan. Insertion order is the
// display order; the first label inserted is the scan's primary type.
type ScanResult struct {
	entries []Entry
	index   map[string]int
}

// NewScanResult creates an empty result.
func NewScanResult() *ScanResult {
	return &ScanResult{index: make(map[string]int)}
}

// Add inserts a label/value pair. Re-adding an existing label updates
// its value in place without changing its display position.
func (r *ScanResult) Add(label, value string) {
	if i, ok := r.index[label]; ok {
		r.entries[i].Value = value
		return
	}
	r.index[label] = len(r.entries)
	r.entries = append(r.entries, Entry{Label: label, Value: value})
}

// Get returns the value stored under label.
func (r *ScanResult) Get(label string) (string, bool) {
	i, ok := r.index[label]
	if !ok {
		return "", false
	}
	return r.entries[i].Value, true
}

// Entries returns the pairs in display order. The returned slice is a
// copy; callers may hold it past the scan.
func (r *ScanResult) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries.
func (r *ScanResult) Len() int {
	return len(r.entries)
}

// IsEmpty reports whether no technology produced an entry. Callers must
// surface this as a "no decodable data" outcome, not as a success.
func (r *ScanResult) IsEmpty() bool {
	return len(r.entries) == 0
}

// PrimaryType returns the first inserted label, or "" for an empty result.
func (r *ScanResult) PrimaryType() string {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[0].Label
}
