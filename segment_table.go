package libewf

// SegmentTable owns every open SegmentFile for one image, indexed by
// segment number. The core holds only non-owning references into it
// (spec.md §3 Lifecycle); callers never reach back into a WriteState
// from a SegmentFile.
type SegmentTable struct {
	pool     *FilePool
	baseName string
	segments map[uint32]*SegmentFile
	deltas   map[uint32]*SegmentFile
}

// NewSegmentTable returns a table that creates segment files alongside
// baseName (e.g. "/evidence/case001" produces "/evidence/case001.E01").
func NewSegmentTable(pool *FilePool, baseName string) *SegmentTable {
	return &SegmentTable{
		pool:     pool,
		baseName: baseName,
		segments: make(map[uint32]*SegmentFile),
		deltas:   make(map[uint32]*SegmentFile),
	}
}

// CreateSegment creates and registers a new primary segment file.
func (t *SegmentTable) CreateSegment(number uint32) (*SegmentFile, error) {
	name, err := segmentFileName(t.baseName, number, false)
	if err != nil {
		return nil, err
	}
	sf, err := OpenNewSegmentFile(t.pool, name, number, false)
	if err != nil {
		return nil, err
	}
	t.segments[number] = sf
	return sf, nil
}

// Segment returns the already-open primary segment file for number, if
// any.
func (t *SegmentTable) Segment(number uint32) (*SegmentFile, bool) {
	sf, ok := t.segments[number]
	return sf, ok
}

// CreateDeltaSegment creates and registers a new delta segment file.
func (t *SegmentTable) CreateDeltaSegment(number uint32) (*SegmentFile, error) {
	name, err := segmentFileName(t.baseName, number, true)
	if err != nil {
		return nil, err
	}
	sf, err := OpenNewSegmentFile(t.pool, name, number, true)
	if err != nil {
		return nil, err
	}
	t.deltas[number] = sf
	return sf, nil
}

// DeltaSegment returns the already-open delta segment file for number,
// if any.
func (t *SegmentTable) DeltaSegment(number uint32) (*SegmentFile, bool) {
	sf, ok := t.deltas[number]
	return sf, ok
}

// LatestDeltaSegment returns the highest-numbered open delta segment
// and its number, or ok=false if none is open yet.
func (t *SegmentTable) LatestDeltaSegment() (sf *SegmentFile, number uint32, ok bool) {
	for n, s := range t.deltas {
		if n >= number || !ok {
			sf, number, ok = s, n, true
		}
	}
	return sf, number, ok
}

// Close closes every file this table owns.
func (t *SegmentTable) Close() error {
	return t.pool.CloseAll()
}

func (t *SegmentTable) segmentPath(number uint32, delta bool) (string, error) {
	return segmentFileName(t.baseName, number, delta)
}
