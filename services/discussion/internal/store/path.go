package store

import (
	"slices"
	"sort"
)

// Path is the chain of reply ids from the top-level reply down to the node itself.
type Path []int64

// Compare orders paths segment by segment; a prefix sorts before its extensions.
func (p Path) Compare(o Path) int {
	return slices.Compare(p, o)
}

// IsAncestorOf reports whether p is a strict prefix of o.
func (p Path) IsAncestorOf(o Path) bool {
	if len(p) >= len(o) {
		return false
	}
	return slices.Equal(p, o[:len(p)])
}

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Append returns a new path with id as the last segment.
func (p Path) Append(id int64) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// SortByPath sorts replies into pre-order.
func SortByPath(replies []Reply) {
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].Path.Compare(replies[j].Path) < 0
	})
}
