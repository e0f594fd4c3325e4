package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Deduplicator accumulates readings, dropping any whose identity was already seen
type Deduplicator struct {
	seen     map[string]bool
	readings []*Reading
}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]bool)}
}

// Add adds readings in order. The first occurrence of an identity wins.
func (d *Deduplicator) Add(readings []*Reading) (added, duplicates int) {
	for _, r := range readings {
		if r == nil {
			continue
		}
		hash := d.hashReading(r)
		if d.seen[hash] {
			duplicates++
			continue
		}
		d.seen[hash] = true
		d.readings = append(d.readings, r)
		added++
	}
	return added, duplicates
}

// Len returns the number of unique readings
func (d *Deduplicator) Len() int {
	return len(d.readings)
}

// Sorted returns the unique readings ordered by internal time. Readings with
// equal timestamps keep the order they were added in.
func (d *Deduplicator) Sorted() []*Reading {
	out := make([]*Reading, len(d.readings))
	copy(out, d.readings)
	SortReadings(out)
	return out
}

// Deduplicate removes duplicate readings and returns the rest in time order
func (d *Deduplicator) Deduplicate(readings []*Reading) []*Reading {
	d.Add(readings)
	return d.Sorted()
}

// hashReading creates an identity-based hash for a reading
func (d *Deduplicator) hashReading(r *Reading) string {
	h := sha256.Sum256([]byte(r.Identity()))
	return hex.EncodeToString(h[:])
}

// SortReadings stable-sorts readings by internal time
func SortReadings(readings []*Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].InternalTime.Before(readings[j].InternalTime)
	})
}
