package civ6save

// Limits bounds allocations during decoding. Counts and sizes come straight
// from the file, so without limits a small hostile input could demand huge
// allocations or unbounded recursion. Zero fields take the default.
type Limits struct {
	MaxEntries      int    // entries or records per counted sequence
	MaxDepth        int    // nesting depth of object/array payloads
	MaxStringLen    uint64 // characters per string payload
	MaxInflatedSize uint64 // bytes after inflating any one chunk stream
	MaxBitmapCells  uint64 // cells per bitmap section
}

func defaultLimits() Limits {
	return Limits{
		MaxEntries:      1 << 20,
		MaxDepth:        64,
		MaxStringLen:    64 << 20, // 64 Mi characters
		MaxInflatedSize: 1 << 30,  // 1 GiB
		MaxBitmapCells:  16 << 20, // 4096x4096
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxStringLen == 0 {
		l.MaxStringLen = d.MaxStringLen
	}
	if l.MaxInflatedSize == 0 {
		l.MaxInflatedSize = d.MaxInflatedSize
	}
	if l.MaxBitmapCells == 0 {
		l.MaxBitmapCells = d.MaxBitmapCells
	}
	return l
}
