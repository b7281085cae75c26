package fingerprint

import (
	"hash/fnv"
	"sync"
)

// Bands and Rows partition a 128-value MinHash signature into 16 bands of
// 8 rows each (spec.md §4.3): two signatures that match exactly within any
// one band are retrieved as Jaccard-similarity candidates, tuned so that
// documents at the target 0.85 threshold are found with high probability.
const (
	Bands = 16
	Rows  = MinHashSize / Bands
)

// LSHIndex is an in-memory banded locality-sensitive-hash index over
// MinHash signatures, used to narrow a new article's near-duplicate check
// to a small candidate set instead of scanning every stored signature.
type LSHIndex struct {
	mu      sync.RWMutex
	buckets [Bands]map[uint64][]string // band -> bucket hash -> article IDs
}

// NewLSHIndex builds an empty index.
func NewLSHIndex() *LSHIndex {
	idx := &LSHIndex{}
	for i := range idx.buckets {
		idx.buckets[i] = make(map[uint64][]string)
	}
	return idx
}

// Insert adds articleID's signature to every band bucket.
func (idx *LSHIndex) Insert(articleID string, sig [MinHashSize]uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for band := 0; band < Bands; band++ {
		key := bandKey(sig, band)
		idx.buckets[band][key] = append(idx.buckets[band][key], articleID)
	}
}

// Remove drops articleID from every band bucket it appears in. Used when an
// article is deleted or its signature is recomputed.
func (idx *LSHIndex) Remove(articleID string, sig [MinHashSize]uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for band := 0; band < Bands; band++ {
		key := bandKey(sig, band)
		ids := idx.buckets[band][key]
		for i, id := range ids {
			if id == articleID {
				idx.buckets[band][key] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}

// Candidates returns the union of article IDs sharing at least one band
// bucket with sig, deduplicated.
func (idx *LSHIndex) Candidates(sig [MinHashSize]uint64) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for band := 0; band < Bands; band++ {
		key := bandKey(sig, band)
		for _, id := range idx.buckets[band][key] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func bandKey(sig [MinHashSize]uint64, band int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	start := band * Rows
	for i := 0; i < Rows; i++ {
		v := sig[start+i]
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		buf[4] = byte(v >> 32)
		buf[5] = byte(v >> 40)
		buf[6] = byte(v >> 48)
		buf[7] = byte(v >> 56)
		h.Write(buf[:])
	}
	return h.Sum64()
}
