package execlog

import "sync"

// Batch is a point-in-time copy of a Buffer, keyed by severity.
type Batch map[Severity][]Entry

// Len returns the total number of entries in b.
func (b Batch) Len() int {
	n := 0
	for _, entries := range b {
		n += len(entries)
	}
	return n
}

// Buffer keeps pending entries in call order, partitioned by severity.
// It is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	buckets [len(severities)][]Entry
}

// Append adds e to the end of its severity bucket. Entries with an
// undefined severity are dropped.
func (b *Buffer) Append(e Entry) {
	if !e.Severity.Valid() {
		return
	}
	b.mu.Lock()
	b.buckets[e.Severity] = append(b.buckets[e.Severity], e)
	b.mu.Unlock()
}

// Snapshot copies the current contents without clearing them.
func (b *Buffer) Snapshot() Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := make(Batch, len(severities))
	for _, sev := range severities {
		bucket := b.buckets[sev]
		cp := make([]Entry, len(bucket))
		copy(cp, bucket)
		batch[sev] = cp
	}
	return batch
}

// Discard removes the entries captured by batch. Entries appended after the
// batch was taken stay in place, so Snapshot followed by Discard never loses
// a concurrent Append.
func (b *Buffer) Discard(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sev := range severities {
		n := len(batch[sev])
		bucket := b.buckets[sev]
		if n > len(bucket) {
			n = len(bucket)
		}
		if n == len(bucket) {
			b.buckets[sev] = nil
			continue
		}
		rest := make([]Entry, len(bucket)-n)
		copy(rest, bucket[n:])
		b.buckets[sev] = rest
	}
}

// Drain returns the current contents and clears the buffer in one step.
func (b *Buffer) Drain() Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := make(Batch, len(severities))
	for _, sev := range severities {
		batch[sev] = b.buckets[sev]
		if batch[sev] == nil {
			batch[sev] = []Entry{}
		}
		b.buckets[sev] = nil
	}
	return batch
}

// Len returns the number of pending entries across all severities.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, bucket := range b.buckets {
		n += len(bucket)
	}
	return n
}

// Counts returns the number of pending entries per severity.
func (b *Buffer) Counts() map[Severity]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[Severity]int, len(severities))
	for _, sev := range severities {
		counts[sev] = len(b.buckets[sev])
	}
	return counts
}
