package search

import (
	"github.com/hailam/chessplay-core/internal/board"
)

// NodeType indicates the kind of bound stored in a transposition entry.
type NodeType uint8

const (
	Exact NodeType = iota // exact score
	Alpha                 // upper bound (failed low)
	Beta                  // lower bound (failed high, beta cutoff)
)

// Entry is a single transposition table slot.
type Entry struct {
	Key      uint32
	BestMove board.Move
	Score    int16
	Depth    int8
	Node     NodeType
	Age      uint8
}

// Table is a fixed-capacity hash table of search results, keyed by the
// upper bits of the position's Zobrist hash with always-replace-if-deeper
// semantics, aged per search to prefer fresh data.
type Table struct {
	entries []Entry
	size    uint64
	mask    uint64
	age     uint8

	hits   uint64
	probes uint64
}

// NewTable creates a transposition table sized to approximately sizeMB
// megabytes, rounded down to a power of two entry count.
func NewTable(sizeMB int) *Table {
	const entrySize = uint64(12)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}

	return &Table{
		entries: make([]Entry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up a position by hash. The returned entry is valid for
// ordering purposes (BestMove) even when its Depth doesn't cover the
// caller's remaining depth; callers must check Depth before trusting Score.
func (t *Table) Probe(hash uint64) (Entry, bool) {
	t.probes++

	idx := hash & t.mask
	entry := t.entries[idx]

	if entry.Key == uint32(hash>>32) && entry.Depth > 0 {
		t.hits++
		return entry, true
	}

	return Entry{}, false
}

// Store records a search result, replacing the existing slot when it is
// from a prior search generation or the new result reaches equal-or-greater
// depth ("always replace" is the minimum bar this exceeds).
func (t *Table) Store(hash uint64, depth, score int, node NodeType, bestMove board.Move) {
	idx := hash & t.mask
	entry := &t.entries[idx]

	if entry.Age != t.age || depth >= int(entry.Depth) {
		entry.Key = uint32(hash >> 32)
		entry.BestMove = bestMove
		entry.Score = int16(score)
		entry.Depth = int8(depth)
		entry.Node = node
		entry.Age = t.age
	}
}

// NewSearch bumps the table's generation counter ahead of a new search.
func (t *Table) NewSearch() {
	t.age++
}

// Clear empties the table entirely.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.age = 0
	t.hits = 0
	t.probes = 0
}

// HashFull returns the permille of the table in use by the current
// generation, sampled over the first 1000 entries.
func (t *Table) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > t.size {
		sampleSize = int(t.size)
	}

	used := 0
	for i := 0; i < sampleSize; i++ {
		if t.entries[i].Depth > 0 && t.entries[i].Age == t.age {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cumulative probe hit rate as a percentage.
func (t *Table) HitRate() float64 {
	if t.probes == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.probes) * 100
}

// Size returns the entry capacity of the table.
func (t *Table) Size() uint64 {
	return t.size
}

// AdjustScoreFromTT converts a mate score stored relative to its own
// subtree depth into one relative to the current root ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a root-relative mate score into one relative to
// the position being stored, so it remains meaningful when probed again
// from a different ply.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
