package script

import "google.golang.org/api/iterator"

// SegmentIterator walks the segments of a script in source order.
type SegmentIterator struct {
	segs []Segment
	pos  int
}

// Segments parses text and returns an iterator over its segments.
func Segments(text string) *SegmentIterator {
	return &SegmentIterator{segs: ParseSegments(text)}
}

// Next returns the next segment.
// Returns iterator.Done when no more segments are available.
func (it *SegmentIterator) Next() (Segment, error) {
	if it.pos >= len(it.segs) {
		return Segment{}, iterator.Done
	}
	s := it.segs[it.pos]
	it.pos++
	return s, nil
}
