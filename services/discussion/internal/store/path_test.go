package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathCompare(t *testing.T) {
	tests := []struct {
		a, b Path
		want int
	}{
		{Path{1}, Path{1}, 0},
		{Path{1}, Path{1, 2}, -1},
		{Path{1, 2}, Path{1}, 1},
		{Path{2}, Path{10}, -1},
		{Path{1, 9}, Path{2}, -1},
		{Path{1, 10}, Path{1, 9}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Compare(tt.b), "%v vs %v", tt.a, tt.b)
	}
}

func TestPathIsAncestorOf(t *testing.T) {
	assert.True(t, Path{1}.IsAncestorOf(Path{1, 2}))
	assert.True(t, Path{1, 2}.IsAncestorOf(Path{1, 2, 3}))
	assert.False(t, Path{1, 2}.IsAncestorOf(Path{1, 2}), "strict prefix only")
	assert.False(t, Path{1, 3}.IsAncestorOf(Path{1, 2, 3}))
	assert.False(t, Path{1, 2, 3}.IsAncestorOf(Path{1, 2}))
}

func TestPathAppendDoesNotAlias(t *testing.T) {
	parent := make(Path, 1, 4)
	parent[0] = 1
	a := parent.Append(2)
	b := parent.Append(3)
	assert.Equal(t, Path{1, 2}, a)
	assert.Equal(t, Path{1, 3}, b)
}

// Numeric ordering keeps 10 after 9 where a string path would not.
func TestSortByPath_PreOrder(t *testing.T) {
	replies := []Reply{
		{ID: 10, Path: Path{10}},
		{ID: 11, Path: Path{9, 11}},
		{ID: 9, Path: Path{9}},
		{ID: 12, Path: Path{9, 11, 12}},
		{ID: 13, Path: Path{10, 13}},
	}
	SortByPath(replies)
	assert.Equal(t, []int64{9, 11, 12, 10, 13}, replyIDs(replies))
}
