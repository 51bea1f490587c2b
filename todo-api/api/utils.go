package api

import (
	"sync/atomic"
	"time"
)

var (
	lastTimestamp int64
)

func nextTimestamp() int64 {
	for {
		now := time.Now().UnixNano()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}

// monotonicNow is a wall clock that never returns the same instant twice,
// so successive edits always move updated_at forward.
func monotonicNow() time.Time {
	return time.Unix(0, nextTimestamp()).UTC()
}
