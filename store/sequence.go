package store

import "sync/atomic"

// Sequence issues strictly increasing identities starting at 1. Values are
// never handed out twice, even after the record holding one is deleted.
type Sequence struct {
	last atomic.Int64
}

func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}
