package driver

import "sort"

// span is a half-open byte range [lo, hi).
type span struct {
	lo, hi int
}

// spanSet keeps live payload ranges sorted by start offset.
type spanSet struct {
	spans []span
}

func (s *spanSet) search(lo int) int {
	return sort.Search(len(s.spans), func(i int) bool { return s.spans[i].lo >= lo })
}

// insert adds [lo, hi) and fails with ErrOverlap if it touches a live range.
func (s *spanSet) insert(lo, hi int) error {
	i := s.search(lo)
	if i > 0 && s.spans[i-1].hi > lo {
		return ErrOverlap
	}
	if i < len(s.spans) && s.spans[i].lo < hi {
		return ErrOverlap
	}
	s.spans = append(s.spans, span{})
	copy(s.spans[i+1:], s.spans[i:])
	s.spans[i] = span{lo: lo, hi: hi}
	return nil
}

// remove drops the range starting at lo.
func (s *spanSet) remove(lo int) {
	i := s.search(lo)
	if i < len(s.spans) && s.spans[i].lo == lo {
		s.spans = append(s.spans[:i], s.spans[i+1:]...)
	}
}

func (s *spanSet) len() int { return len(s.spans) }
