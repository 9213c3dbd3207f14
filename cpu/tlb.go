package cpu

import "sync"

// TLBEntries is the number of cached section translations per core.
const TLBEntries = 64

type tlbEntry struct {
	valid bool
	index uint32
	desc  uint32
}

// TLB caches first level descriptors by section index. It never observes
// translation table writes: a cached descriptor survives until it is
// invalidated or evicted.
type TLB struct {
	mu      sync.Mutex
	entries [TLBEntries]tlbEntry
	next    int
	hits    uint64
	misses  uint64

	// gen counts invalidations. A walk that raced one is not cached.
	gen uint64
}

// lookup returns the cached descriptor, or on a miss the generation the
// refill must be tagged with.
func (t *TLB) lookup(index uint32) (desc uint32, gen uint64, hit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		e := &t.entries[i]
		if e.valid && e.index == index {
			t.hits++
			return e.desc, t.gen, true
		}
	}
	t.misses++
	return 0, t.gen, false
}

// fill replaces the oldest entry, unless an invalidation happened since
// the lookup of gen.
func (t *TLB) fill(index, desc uint32, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return false
	}
	t.entries[t.next] = tlbEntry{valid: true, index: index, desc: desc}
	t.next = (t.next + 1) % TLBEntries
	return true
}

// Invalidate drops every cached translation
func (t *TLB) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	for i := range t.entries {
		t.entries[i].valid = false
	}
}

// InvalidateEntry drops the translation of the section containing mva
func (t *TLB) InvalidateEntry(mva uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	index := SectIndex(mva)
	for i := range t.entries {
		if t.entries[i].index == index {
			t.entries[i].valid = false
		}
	}
}

// Cached reports whether the section containing mva has a live entry
func (t *TLB) Cached(mva uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	index := SectIndex(mva)
	for _, e := range t.entries {
		if e.valid && e.index == index {
			return true
		}
	}
	return false
}

// Stats returns hit and miss counters and the number of live entries
func (t *TLB) Stats() (hits, misses uint64, valid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.valid {
			valid++
		}
	}
	return t.hits, t.misses, valid
}
